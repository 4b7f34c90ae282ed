package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type KnowledgeSource struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FilePath      string    `gorm:"type:text;not null;uniqueIndex"`
	Description   string    `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending';index"`
	Progress      float64   `gorm:"not null;default:0"`
	CurrentStep   *string   `gorm:"type:text"`
	ChunkCount    int       `gorm:"not null;default:0"`
	ErrorMessage  *string   `gorm:"type:text"`
	StartedAt     *time.Time
	LastIndexedAt *time.Time
	Features      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	// RunGeneration guards against late writes from superseded ingestion runs.
	RunGeneration int            `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (KnowledgeSource) TableName() string {
	return "knowledge_sources"
}
