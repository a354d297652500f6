package domain

import (
	"sync"

	validator "github.com/go-playground/validator/v10"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate applies the same bounds the table CHECK constraints enforce.
func (s NotificationSettings) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return apperrors.NewValidationError("invalid notification settings", err)
	}
	return nil
}

// Validate applies the same bounds the table CHECK constraints enforce.
func (s GeneralSettings) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return apperrors.NewValidationError("invalid general settings", err)
	}
	return nil
}
