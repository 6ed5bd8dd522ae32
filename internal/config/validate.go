package config

import (
	"errors"

	infraconfig "github.com/jonesrussell/north-cloud/triage/infrastructure/config"
)

// Validate checks the loaded configuration and returns every problem found.
func (c *Config) Validate() error {
	errs := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		c.Database.Validate(),
		infraconfig.ValidateOneOf("ml.sentiment_source", c.ML.SentimentSource, SentimentSidecar, SentimentLexicon),
		infraconfig.ValidateOneOf("concern.provider", c.Concern.Provider, ConcernSidecar, ConcernOpenAI, ConcernNone),
		infraconfig.ValidateRange("concern.threshold", c.Concern.Threshold, 0, 1),
	}

	if c.ML.Enabled {
		errs = append(errs, infraconfig.ValidateRequired("ml.base_url", c.ML.BaseURL))
	}
	if c.Concern.Provider == ConcernOpenAI {
		errs = append(errs, infraconfig.ValidateRequired("openai.api_key", c.OpenAI.APIKey))
	}
	if c.Concern.Provider == ConcernSidecar && !c.ML.Enabled {
		errs = append(errs, &infraconfig.ValidationError{
			Field:   "concern.provider",
			Message: "sidecar requires ml.enabled",
		})
	}
	if c.Redis.Enabled {
		errs = append(errs, infraconfig.ValidateRequired("redis.address", c.Redis.Address))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, &infraconfig.ValidationError{
			Field:   "rate_limit",
			Message: "rps and burst must be positive",
		})
	}
	if c.Auth.AdminPassword != "" {
		errs = append(errs, infraconfig.ValidateRequired("auth.jwt_secret", c.Auth.JWTSecret))
	}

	return errors.Join(errs...)
}
