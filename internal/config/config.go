// README: Config loader; viper reads an optional config.yaml, then TRIP_* env vars, then defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TRIP"

type PlannerConfig struct {
	ShortTripMaxDays int
	ChunkSize        int
	Concurrency      int
	MaxRetries       int
	RetryBase        time.Duration
	MaxTripDays      int
	RequestTimeout   time.Duration
}

type AIConfig struct {
	Provider      string
	Timeout       time.Duration
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
	GeminiJSON    bool
}

type Config struct {
	Env string
	Log struct {
		Level string
	}
	HTTP struct {
		Addr        string
		CORSOrigins []string
		// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is
		// honoured. Empty trusts none.
		TrustedProxies []string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	AI   AIConfig
	Maps struct {
		APIKey     string
		Language   string
		Region     string
		TravelMode string
		MinRating  float64
		Routes     bool
	}
	Planner PlannerConfig
	Quota   struct {
		MonthlyTokens int
	}
	RateLimit struct {
		PerMinute int
	}
}

// Load builds a Config from defaults, an optional config file and the environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("http.trusted_proxies", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.timeout", 120*time.Second)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-search-preview")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.json_mode", true)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.language", "en")
	v.SetDefault("maps.region", "")
	v.SetDefault("maps.travel_mode", "driving")
	v.SetDefault("maps.min_rating", 0.0)
	v.SetDefault("maps.routes", false)
	v.SetDefault("planner.short_trip_max_days", 4)
	v.SetDefault("planner.chunk_size", 5)
	v.SetDefault("planner.concurrency", 5)
	v.SetDefault("planner.max_retries", 2)
	v.SetDefault("planner.retry_base", 1200*time.Millisecond)
	v.SetDefault("planner.max_trip_days", 30)
	v.SetDefault("planner.request_timeout", 5*time.Minute)
	v.SetDefault("quota.monthly_tokens", 100)
	v.SetDefault("rate_limit.per_minute", 30)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	cfg.Env = v.GetString("env")
	cfg.Log.Level = v.GetString("log.level")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.CORSOrigins = splitCSV(v.GetString("http.cors_origins"))
	cfg.HTTP.TrustedProxies = splitCSV(v.GetString("http.trusted_proxies"))
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Firebase.ProjectID = v.GetString("firebase.project_id")
	cfg.Firebase.CredentialsFile = v.GetString("firebase.credentials_file")

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(v.GetString("ai.provider")))
	cfg.AI.Timeout = v.GetDuration("ai.timeout")
	cfg.AI.OpenAIKey = v.GetString("openai.api_key")
	cfg.AI.OpenAIBaseURL = v.GetString("openai.base_url")
	cfg.AI.OpenAIModel = v.GetString("openai.model")
	cfg.AI.GeminiKey = v.GetString("gemini.api_key")
	cfg.AI.GeminiModel = v.GetString("gemini.model")
	cfg.AI.GeminiJSON = v.GetBool("gemini.json_mode")

	cfg.Maps.APIKey = v.GetString("maps.api_key")
	cfg.Maps.Language = v.GetString("maps.language")
	cfg.Maps.Region = v.GetString("maps.region")
	cfg.Maps.TravelMode = v.GetString("maps.travel_mode")
	cfg.Maps.MinRating = v.GetFloat64("maps.min_rating")
	cfg.Maps.Routes = v.GetBool("maps.routes")

	cfg.Planner.ShortTripMaxDays = v.GetInt("planner.short_trip_max_days")
	cfg.Planner.ChunkSize = v.GetInt("planner.chunk_size")
	cfg.Planner.Concurrency = v.GetInt("planner.concurrency")
	cfg.Planner.MaxRetries = v.GetInt("planner.max_retries")
	cfg.Planner.RetryBase = v.GetDuration("planner.retry_base")
	cfg.Planner.MaxTripDays = v.GetInt("planner.max_trip_days")
	cfg.Planner.RequestTimeout = v.GetDuration("planner.request_timeout")

	cfg.Quota.MonthlyTokens = v.GetInt("quota.monthly_tokens")
	cfg.RateLimit.PerMinute = v.GetInt("rate_limit.per_minute")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			missing = append(missing, envPrefix+"_OPENAI_API_KEY")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			missing = append(missing, envPrefix+"_GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown ai provider %q (want openai or gemini)", c.AI.Provider)
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if c.Planner.ChunkSize < 1 || c.Planner.Concurrency < 1 || c.Planner.MaxRetries < 0 {
		return errors.New("planner chunk size and concurrency must be positive, retries non-negative")
	}
	return nil
}

// IsProduction reports whether the service runs with production logging.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
