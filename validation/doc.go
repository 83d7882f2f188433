// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator.
//
//	type EngineConfig struct {
//	    Workers int `mapstructure:"workers" validate:"gte=0,lte=1024"`
//	}
//	err := validation.Validate(cfg)
//
// Errors name the offending keys by their mapstructure tag.
package validation
