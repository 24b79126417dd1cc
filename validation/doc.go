// Package validation checks configuration values before a pipeline is
// built. Failures are *errors.Error of kind BadRequest with code
// INVALID_CONFIG; the per-field detail is available through FieldErrors.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Timeout     time.Duration `validate:"gte=0"`
//	    MaxAttempts int           `validate:"gte=0,lte=10"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(cfg.Redis.Enabled || cfg.Cache.MaxEntries >= 0, "cache.max_entries", "must not be negative")
//	err := v.Validate()
package validation
