package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"losadmin/internal/models"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("lead_status", validateLeadStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("notice_type", validateNoticeType)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

func validateLeadStatus(fl playgroundvalidator.FieldLevel) bool {
	status := fl.Field().String()
	return status == models.LeadNew || status == models.LeadContacted || status == models.LeadConverted
}

func validateNoticeType(fl playgroundvalidator.FieldLevel) bool {
	validTypes := map[string]bool{
		"SMS":      true,
		"EMAIL":    true,
		"WHATSAPP": true,
		"LEGAL":    true,
	}
	return validTypes[strings.ToUpper(fl.Field().String())]
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// LoginRequest is the body of POST /api/token/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type GrantRequest struct {
	PermissionIDs []string `json:"permission_ids" validate:"required"`
}

type CallRequest struct {
	Notes string `json:"notes" validate:"required"`
}

type RemarksRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}

type NoticeRequest struct {
	Type string `json:"type" validate:"required,notice_type"`
}
