package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	// http(s) URL with a host; the scanning service and allowed origins must be absolute
	_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		if raw == "" {
			return false
		}
		u, err := url.Parse(raw)
		if err != nil {
			return false
		}
		scheme := strings.ToLower(u.Scheme)
		return (scheme == "http" || scheme == "https") && u.Host != ""
	})

	_ = validate.RegisterValidation("proxyurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(strings.TrimSpace(fl.Field().String()))
		if err != nil || u.Host == "" {
			return false
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "socks5", "socks5h":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", errorwrapper.ErrInvalidConfiguration, err)
	}

	var validationErrorMessages []string
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("%w: validation failed:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(validationErrorMessages, "\n  "))
}
