package config

import (
	"net"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("listen_addr", func(fl validator.FieldLevel) bool {
			_, port, err := net.SplitHostPort(fl.Field().String())
			return err == nil && port != ""
		})

		validateInst = v
	})

	return validateInst
}

// Validate performs schema validation on the configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return apperrors.NewValidationError("", "config", "configuration is nil")
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	return nil
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	field := strings.ToLower(first.Namespace())
	return apperrors.NewValidationError("", field, "failed rule "+first.Tag())
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}
