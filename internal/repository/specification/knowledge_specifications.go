package specification

import "gorm.io/gorm"

// ByFilePath filters knowledge sources by their registered file path
type ByFilePath struct {
	FilePath string
}

func (s ByFilePath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_path = ?", s.FilePath)
}

// BySourcePath filters chunk embeddings by the source file they came from
type BySourcePath struct {
	SourcePath string
}

func (s BySourcePath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_path = ?", s.SourcePath)
}

// ByStatus filters knowledge sources by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
