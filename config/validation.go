package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

// requirements lists the settings that may not be empty per environment.
var requirements = map[Environment][]string{
	Development: {"JWT_SECRET"},
	Test:        {"JWT_SECRET"},
	CI:          {"JWT_SECRET", "DB_PASSWORD"},
	Production:  {"JWT_SECRET", "DB_PASSWORD", "S3_BUCKET_NAME", "AWS_REGION"},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	values := map[string]string{
		"JWT_SECRET":     cfg.JWTSecret,
		"DB_PASSWORD":    cfg.DBPassword,
		"S3_BUCKET_NAME": cfg.S3.Bucket,
		"AWS_REGION":     cfg.S3.Region,
	}
	for _, key := range requirements[cfg.Environment] {
		if values[key] == "" {
			errs = append(errs, ValidationError{Field: key, Message: "is required"})
		}
	}

	if cfg.Environment == Production && len(cfg.JWTSecret) < 32 {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be at least 32 characters in production"})
	}
	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "is required"})
	}
	if cfg.ImageTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "IMAGE_TIMEOUT", Message: "must be positive"})
	}
	if cfg.RecipeCreateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "RECIPE_CREATE_LIMIT", Message: "must be positive"})
	}
	if cfg.RecipeModifyLimit <= 0 {
		errs = append(errs, ValidationError{Field: "RECIPE_MODIFY_LIMIT", Message: "must be positive"})
	}
	if (cfg.S3.AccessKeyID == "") != (cfg.S3.SecretAccessKey == "") {
		errs = append(errs, ValidationError{Field: "AWS_ACCESS_KEY_ID", Message: "access key and secret key must be set together"})
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("unknown format %q", cfg.LogFormat)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
