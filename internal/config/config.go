package config

import (
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/triage/infrastructure/config"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
)

// Default configuration values.
const (
	defaultServiceName       = "triage"
	defaultServiceVersion    = "1.0.0"
	defaultServicePort       = 5000
	defaultMLBaseURL         = "http://localhost:8090"
	defaultMLTimeout         = 5 * time.Second
	defaultBreakerFailures   = 5
	defaultBreakerSuccesses  = 1
	defaultBreakerOpen       = 30 * time.Second
	defaultConcernThreshold  = 0.5
	defaultConcernCacheTTL   = 24 * time.Hour
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultRateLimitRPS      = 1.0
	defaultRateLimitBurst    = 5
	defaultRateLimitIdleTTL  = 10 * time.Minute
	defaultTokenTTL          = 24 * time.Hour
	defaultCORSAllowedOrigin = "http://localhost:3000"
)

// Sentiment sources.
const (
	SentimentSidecar = "sidecar"
	SentimentLexicon = "lexicon"
)

// Concern providers.
const (
	ConcernSidecar = "sidecar"
	ConcernOpenAI  = "openai"
	ConcernNone    = "none"
)

// Config holds all configuration for the triage service.
type Config struct {
	Service   ServiceConfig              `yaml:"service"`
	Database  infraconfig.DatabaseConfig `yaml:"database"`
	Logging   logger.Config              `yaml:"logging"`
	ML        MLConfig                   `yaml:"ml"`
	Concern   ConcernConfig              `yaml:"concern"`
	OpenAI    OpenAIConfig               `yaml:"openai"`
	Redis     infraconfig.RedisConfig    `yaml:"redis"`
	RateLimit RateLimitConfig            `yaml:"rate_limit"`
	Auth      AuthConfig                 `yaml:"auth"`
	CORS      CORSConfig                 `yaml:"cors"`
	Reply     ReplyConfig                `yaml:"reply"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"TRIAGE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"   yaml:"debug"`
	// PprofAddr enables the profiling server, e.g. "localhost:6060".
	PprofAddr string `env:"PPROF_ADDR" yaml:"pprof_addr"`
}

// MLConfig points at the model sidecar. With Enabled false every model
// falls back to its in-process or null adapter.
type MLConfig struct {
	Enabled         bool          `env:"ML_ENABLED"          yaml:"enabled"`
	BaseURL         string        `env:"ML_SERVICE_URL"      yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	SentimentSource string        `env:"ML_SENTIMENT_SOURCE" yaml:"sentiment_source"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the sidecar circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// ConcernConfig selects the zero-shot backend.
type ConcernConfig struct {
	Provider  string        `env:"CONCERN_PROVIDER" yaml:"provider"`
	Threshold float64       `yaml:"threshold"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// OpenAIConfig holds the chat model used by the openai concern provider.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"  yaml:"api_key"`
	Model   string `env:"OPENAI_MODEL"    yaml:"model"`
	BaseURL string `env:"OPENAI_BASE_URL" yaml:"base_url"`
}

// RateLimitConfig limits message submissions per user.
type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" yaml:"enabled"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret     string        `env:"AUTH_JWT_SECRET"     yaml:"jwt_secret"`
	AdminPassword string        `env:"AUTH_ADMIN_PASSWORD" yaml:"admin_password"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// CORSConfig lists the front-end origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" yaml:"allowed_origins"`
}

// ReplyConfig overrides canned reply text.
type ReplyConfig struct {
	CrisisMessage string `env:"REPLY_CRISIS_MESSAGE" yaml:"crisis_message"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	cfg.Database.SetDefaults()
	cfg.Logging.SetDefaults()
	setMLDefaults(&cfg.ML)
	setConcernDefaults(&cfg.Concern, cfg.ML.Enabled)
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = defaultOpenAIModel
	}
	cfg.Redis.SetDefaults()
	setRateLimitDefaults(&cfg.RateLimit)
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{defaultCORSAllowedOrigin}
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setMLDefaults(m *MLConfig) {
	if m.BaseURL == "" {
		m.BaseURL = defaultMLBaseURL
	}
	if m.Timeout == 0 {
		m.Timeout = defaultMLTimeout
	}
	if m.SentimentSource == "" {
		m.SentimentSource = SentimentSidecar
	}
	if m.Breaker.FailureThreshold == 0 {
		m.Breaker.FailureThreshold = defaultBreakerFailures
	}
	if m.Breaker.SuccessThreshold == 0 {
		m.Breaker.SuccessThreshold = defaultBreakerSuccesses
	}
	if m.Breaker.OpenTimeout == 0 {
		m.Breaker.OpenTimeout = defaultBreakerOpen
	}
}

// Without the sidecar the default provider is none, so a bare config runs
// the model-free path.
func setConcernDefaults(c *ConcernConfig, mlEnabled bool) {
	if c.Provider == "" {
		c.Provider = ConcernNone
		if mlEnabled {
			c.Provider = ConcernSidecar
		}
	}
	if c.Threshold == 0 {
		c.Threshold = defaultConcernThreshold
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = defaultConcernCacheTTL
	}
}

func setRateLimitDefaults(r *RateLimitConfig) {
	if r.RPS == 0 {
		r.RPS = defaultRateLimitRPS
	}
	if r.Burst == 0 {
		r.Burst = defaultRateLimitBurst
	}
	if r.IdleTTL == 0 {
		r.IdleTTL = defaultRateLimitIdleTTL
	}
}
