package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the daemon.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Location LocationConfig `yaml:"location"`
	Twilight TwilightConfig `yaml:"twilight"`
	Schedule ScheduleConfig `yaml:"schedule"`
	LLM      LLMConfig      `yaml:"llm"`
	Story    StoryConfig    `yaml:"story"`
	TTS      TTSConfig      `yaml:"tts"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Media    MediaConfig    `yaml:"media"`
	SMS      SMSConfig      `yaml:"sms"`
	Storage  StorageConfig  `yaml:"storage"`
}

// HTTPConfig controls the local control API.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Auth           AuthConfig      `yaml:"auth"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig enables bearer token checks when Secret is set.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// LocationConfig pins where twilight is computed.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`
}

// TwilightConfig controls the fetch/retry/throttle policy.
type TwilightConfig struct {
	APIBaseURL   string        `yaml:"apiBaseUrl"`
	Attempts     int           `yaml:"attempts"`
	Timeout      time.Duration `yaml:"timeout"`
	MinInterval  time.Duration `yaml:"minInterval"`
	BackoffStep  time.Duration `yaml:"backoffStep"`
	MaxInterval  time.Duration `yaml:"maxInterval"`
	CacheEnabled bool          `yaml:"cacheEnabled"`
	CacheAddr    string        `yaml:"cacheAddr"`
}

// ScheduleConfig sets the periodic job cadences.
type ScheduleConfig struct {
	ClockEvery      time.Duration `yaml:"clockEvery"`
	AlertEvery      time.Duration `yaml:"alertEvery"`
	StoryEvery      time.Duration `yaml:"storyEvery"`
	AlertThresholds []int         `yaml:"alertThresholds"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// StoryConfig controls story generation.
type StoryConfig struct {
	Theme          string `yaml:"theme"`
	PromptTemplate string `yaml:"promptTemplate"`
	Auto           bool   `yaml:"auto"`
}

// TTSConfig lists the speech backends in priority order.
type TTSConfig struct {
	Google    GoogleTTSConfig    `yaml:"google"`
	Translate TranslateTTSConfig `yaml:"translate"`
}

// GoogleTTSConfig configures the premium Cloud Text-to-Speech backend.
type GoogleTTSConfig struct {
	CredentialsFile string  `yaml:"credentialsFile"`
	LanguageCode    string  `yaml:"languageCode"`
	Voice           string  `yaml:"voice"`
	SpeakingRate    float64 `yaml:"speakingRate"`
	Pitch           float64 `yaml:"pitch"`
	BaseURL         string  `yaml:"baseUrl"`
}

// TranslateTTSConfig configures the free fallback backend.
type TranslateTTSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"baseUrl"`
}

// YouTubeConfig configures the Data API search client.
type YouTubeConfig struct {
	APIKey     string `yaml:"apiKey"`
	BaseURL    string `yaml:"baseUrl"`
	MaxResults int    `yaml:"maxResults"`
}

// MediaConfig locates the stream resolver and player binaries.
type MediaConfig struct {
	YTDLPPath  string `yaml:"ytdlpPath"`
	PlayerPath string `yaml:"playerPath"`
	SocketPath string `yaml:"socketPath"`
}

// SMSConfig holds Twilio credentials and the destination number.
type SMSConfig struct {
	AccountSID string `yaml:"accountSid"`
	AuthToken  string `yaml:"authToken"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	BaseURL    string `yaml:"baseUrl"`
}

// StorageConfig covers persistence for scheduled messages and story audio.
type StorageConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Audio    AudioConfig    `yaml:"audio"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AudioConfig selects where synthesized stories are archived.
type AudioConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

// S3Config points at an S3-compatible bucket.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_AUTH_SECRET"); v != "" {
		cfg.HTTP.Auth.Secret = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("LATITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Latitude = parsed
		}
	}
	if v := os.Getenv("LONGITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Longitude = parsed
		}
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Location.Timezone = v
	}
	if v := os.Getenv("TWILIGHT_API_BASE_URL"); v != "" {
		cfg.Twilight.APIBaseURL = v
	}
	if v := os.Getenv("TWILIGHT_CACHE_ADDR"); v != "" {
		cfg.Twilight.CacheAddr = v
		cfg.Twilight.CacheEnabled = true
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("STORY_THEME"); v != "" {
		cfg.Story.Theme = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && cfg.TTS.Google.CredentialsFile == "" {
		cfg.TTS.Google.CredentialsFile = v
	}
	if v := os.Getenv("GCP_TTS_VOICE"); v != "" {
		cfg.TTS.Google.Voice = v
	}
	if v := os.Getenv("GCP_TTS_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TTS.Google.SpeakingRate = parsed
		}
	}
	if v := os.Getenv("GCP_TTS_PITCH"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TTS.Google.Pitch = parsed
		}
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		cfg.YouTube.APIKey = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.SMS.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.SMS.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.SMS.From = v
	}
	if v := os.Getenv("DEST_PHONE_NUMBER"); v != "" {
		cfg.SMS.To = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("AUDIO_DIR"); v != "" {
		cfg.Storage.Audio.Dir = v
	}
	if v := os.Getenv("AUDIO_S3_ENABLED"); v != "" {
		cfg.Storage.Audio.S3.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUDIO_S3_ENDPOINT"); v != "" {
		cfg.Storage.Audio.S3.Endpoint = v
	}
	if v := os.Getenv("AUDIO_S3_ACCESS_KEY"); v != "" {
		cfg.Storage.Audio.S3.AccessKey = v
	}
	if v := os.Getenv("AUDIO_S3_SECRET_KEY"); v != "" {
		cfg.Storage.Audio.S3.SecretKey = v
	}
	if v := os.Getenv("AUDIO_S3_BUCKET"); v != "" {
		cfg.Storage.Audio.S3.Bucket = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      "127.0.0.1:8787",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Auth: AuthConfig{
				TokenTTL: 24 * time.Hour,
			},
		},
		Location: LocationConfig{
			Latitude:  48.8566,
			Longitude: 2.3522,
			Timezone:  "Local",
		},
		Twilight: TwilightConfig{
			APIBaseURL:  "https://api.sunrise-sunset.org/json",
			Attempts:    3,
			Timeout:     8 * time.Second,
			MinInterval: 60 * time.Second,
			BackoffStep: 30 * time.Second,
			MaxInterval: 300 * time.Second,
		},
		Schedule: ScheduleConfig{
			ClockEvery:      time.Second,
			AlertEvery:      60 * time.Second,
			StoryEvery:      10 * time.Minute,
			AlertThresholds: []int{30, 20, 10},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.8,
			MaxTokens:   350,
		},
		Story: StoryConfig{
			Theme:          "fantastique",
			PromptTemplate: "Raconte-moi une courte histoire de style %s.",
			Auto:           true,
		},
		TTS: TTSConfig{
			Google: GoogleTTSConfig{
				LanguageCode: "fr-FR",
				Voice:        "fr-FR-Neural2-A",
				SpeakingRate: 1.0,
			},
			Translate: TranslateTTSConfig{
				Enabled:  true,
				Language: "fr",
			},
		},
		YouTube: YouTubeConfig{
			MaxResults: 10,
		},
		Media: MediaConfig{
			YTDLPPath:  "yt-dlp",
			PlayerPath: "mpv",
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Auth.Secret != "" && c.HTTP.Auth.TokenTTL <= 0 {
		return errors.New("http.auth.tokenTtl must be positive when a secret is set")
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return errors.New("location.latitude must be within [-90, 90]")
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return errors.New("location.longitude must be within [-180, 180]")
	}
	if _, err := c.Location.Zone(); err != nil {
		return fmt.Errorf("location.timezone: %w", err)
	}
	if strings.TrimSpace(c.Twilight.APIBaseURL) == "" {
		return errors.New("twilight.apiBaseUrl cannot be empty")
	}
	if c.Twilight.Attempts <= 0 {
		return errors.New("twilight.attempts must be positive")
	}
	if c.Twilight.Timeout <= 0 {
		return errors.New("twilight.timeout must be positive")
	}
	if c.Twilight.MinInterval <= 0 {
		return errors.New("twilight.minInterval must be positive")
	}
	if c.Twilight.BackoffStep < 0 {
		return errors.New("twilight.backoffStep cannot be negative")
	}
	if c.Twilight.MaxInterval < c.Twilight.MinInterval {
		return errors.New("twilight.maxInterval cannot be below twilight.minInterval")
	}
	if c.Twilight.CacheEnabled && strings.TrimSpace(c.Twilight.CacheAddr) == "" {
		return errors.New("twilight.cacheAddr cannot be empty when the cache is enabled")
	}
	if c.Schedule.ClockEvery <= 0 || c.Schedule.AlertEvery <= 0 || c.Schedule.StoryEvery <= 0 {
		return errors.New("schedule intervals must be positive")
	}
	for _, threshold := range c.Schedule.AlertThresholds {
		if threshold <= 0 {
			return errors.New("schedule.alertThresholds must be positive minutes")
		}
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.maxTokens must be positive")
	}
	if !strings.Contains(c.Story.PromptTemplate, "%s") {
		return errors.New("story.promptTemplate must contain a %s placeholder for the theme")
	}
	if c.YouTube.MaxResults <= 0 || c.YouTube.MaxResults > 50 {
		return errors.New("youtube.maxResults must be within [1, 50]")
	}
	if c.Storage.Audio.S3.Enabled {
		if strings.TrimSpace(c.Storage.Audio.S3.Endpoint) == "" || strings.TrimSpace(c.Storage.Audio.S3.Bucket) == "" {
			return errors.New("storage.audio.s3 requires endpoint and bucket when enabled")
		}
	}
	return nil
}

// Zone resolves the configured timezone; "Local" and "" map to time.Local.
func (l LocationConfig) Zone() (*time.Location, error) {
	name := strings.TrimSpace(l.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
