// Package validation checks configuration and request values and reports
// failures as *errors.AppError with code INVALID_INPUT.
//
// Struct tag validation uses the validator library and names fields after
// their mapstructure or yaml tag, so messages match the config file keys:
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"omitempty,http_url"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors for values without tags:
//
//	v := validation.New()
//	v.Required("method", req.Method)
//	if err := v.Validate(); err != nil { ... }
package validation
