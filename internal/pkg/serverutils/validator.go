package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags and folds violations into a single
// 400 with field-level messages.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var violations []string
	for _, fieldErr := range err.(validator.ValidationErrors) {
		violations = append(violations, fmt.Sprintf("%s: failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, strings.Join(violations, "; "))
}
