package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("assistant_task", validateAssistantTask); err != nil {
		panic(fmt.Sprintf("failed to register assistant_task validator: %v", err))
	}
	if err := Validate.RegisterValidation("chat_role", validateChatRole); err != nil {
		panic(fmt.Sprintf("failed to register chat_role validator: %v", err))
	}
}

func validateAssistantTask(fl validator.FieldLevel) bool {
	return slices.Contains(models.Tasks, fl.Field().String())
}

func validateChatRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.RoleUser, models.RoleAssistant:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTask validates an assistant task name. The empty string means no task.
func ValidateTask(value string) error {
	if value == "" || slices.Contains(models.Tasks, value) {
		return nil
	}
	return fmt.Errorf("invalid task: %s (must be one of %s)", value, strings.Join(models.Tasks, ", "))
}

// FirstError renders the first validation failure as a short client-facing message
func FirstError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s exceeds the maximum of %s", fe.Field(), fe.Param())
	case "assistant_task":
		return fmt.Sprintf("invalid task: %v", fe.Value())
	case "chat_role":
		return fmt.Sprintf("invalid role: %v", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
