package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/twilight-hud/internal/domain/auth"
	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/messaging"
	"github.com/yanqian/twilight-hud/internal/domain/story"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
	"github.com/yanqian/twilight-hud/internal/infra/audiostore"
	"github.com/yanqian/twilight-hud/internal/infra/config"
	"github.com/yanqian/twilight-hud/internal/infra/llm/chatgpt"
	"github.com/yanqian/twilight-hud/internal/infra/llm/tokenizer"
	"github.com/yanqian/twilight-hud/internal/infra/media/mpv"
	"github.com/yanqian/twilight-hud/internal/infra/media/ytdlp"
	"github.com/yanqian/twilight-hud/internal/infra/messagerepo"
	"github.com/yanqian/twilight-hud/internal/infra/sms/twilio"
	"github.com/yanqian/twilight-hud/internal/infra/tts/googlecloud"
	"github.com/yanqian/twilight-hud/internal/infra/tts/translate"
	"github.com/yanqian/twilight-hud/internal/infra/twilight/sunrisesunset"
	"github.com/yanqian/twilight-hud/internal/infra/twilightstore"
	"github.com/yanqian/twilight-hud/internal/infra/youtube"
)

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location.Zone()
}

func provideTwilightConfig(cfg *config.Config, loc *time.Location) twilight.Config {
	return twilight.Config{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Location:  loc,
		Retry: twilight.RetryPolicy{
			Attempts: cfg.Twilight.Attempts,
			Timeout:  cfg.Twilight.Timeout,
		},
		MinInterval: cfg.Twilight.MinInterval,
		BackoffStep: cfg.Twilight.BackoffStep,
		MaxInterval: cfg.Twilight.MaxInterval,
		Thresholds:  cfg.Schedule.AlertThresholds,
	}
}

func provideTwilightSource(cfg *config.Config, loc *time.Location) twilight.Source {
	return sunrisesunset.NewClient(cfg.Twilight.APIBaseURL, loc)
}

func provideTwilightStore(cfg *config.Config, logger *slog.Logger) twilight.CacheStore {
	if !cfg.Twilight.CacheEnabled {
		return twilightstore.NewMemoryStore()
	}
	opt, err := buildValkeyOptions(cfg.Twilight.CacheAddr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return twilightstore.NewMemoryStore()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return twilightstore.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return twilightstore.NewMemoryStore()
	}
	logger.Info("twilight valkey cache enabled", "addr", cfg.Twilight.CacheAddr)
	return twilightstore.NewValkeyStore(client, "twilight-hud")
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideAlertSinks(logger *slog.Logger) []twilight.AlertSink {
	return []twilight.AlertSink{twilight.NewLogSink(logger)}
}

func provideMediaConfig(cfg *config.Config) media.Config {
	return media.Config{MaxResults: cfg.YouTube.MaxResults}
}

func provideSearcher(cfg *config.Config, logger *slog.Logger) media.Searcher {
	client, err := youtube.NewClient(cfg.YouTube.APIKey, cfg.YouTube.BaseURL)
	if err != nil {
		logger.Info("youtube api key not set, video search disabled")
		return nil
	}
	return client
}

func provideResolver(cfg *config.Config) media.Resolver {
	return ytdlp.NewResolver(cfg.Media.YTDLPPath)
}

func providePlayer(cfg *config.Config, logger *slog.Logger) (media.Player, func()) {
	player := mpv.NewPlayer(cfg.Media.PlayerPath, cfg.Media.SocketPath, logger)
	return player, func() {
		if err := player.Close(); err != nil {
			logger.Warn("failed to close media player", "error", err)
		}
	}
}

func provideSMSCredentials(cfg *config.Config) messaging.Credentials {
	return messaging.Credentials{
		AccountSID: cfg.SMS.AccountSID,
		AuthToken:  cfg.SMS.AuthToken,
		From:       cfg.SMS.From,
		To:         cfg.SMS.To,
	}
}

func provideSMSSender(cfg *config.Config, creds messaging.Credentials, logger *slog.Logger) messaging.Sender {
	if !creds.Complete() {
		logger.Info("twilio credentials incomplete, sms disabled")
		return nil
	}
	client, err := twilio.NewClient(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.BaseURL)
	if err != nil {
		logger.Error("failed to build twilio client, sms disabled", "error", err)
		return nil
	}
	return client
}

func provideMessageRepository(cfg *config.Config, logger *slog.Logger) messaging.Repository {
	fallback := messagerepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory message repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory message repository", "error", err)
		return fallback
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory message repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory message repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres message repository enabled")
	return messagerepo.NewPostgresRepository(pool)
}

func provideStoryConfig(cfg *config.Config) story.Config {
	return story.Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Theme:          cfg.Story.Theme,
		PromptTemplate: cfg.Story.PromptTemplate,
	}
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) story.ChatClient {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Info("llm api key not set, stories disabled")
		return nil
	}
	return client
}

func provideTokenCounter(cfg *config.Config) story.TokenCounter {
	return tokenizer.NewCounter(cfg.LLM.Model)
}

func provideSpeakers(cfg *config.Config, logger *slog.Logger) []story.Speaker {
	var speakers []story.Speaker
	google := cfg.TTS.Google
	if strings.TrimSpace(google.CredentialsFile) != "" {
		speaker, err := googlecloud.NewSpeaker(context.Background(), google.CredentialsFile, google.BaseURL, googlecloud.Voice{
			LanguageCode: google.LanguageCode,
			Name:         google.Voice,
			SpeakingRate: google.SpeakingRate,
			Pitch:        google.Pitch,
		})
		if err != nil {
			logger.Error("google cloud tts unavailable", "error", err)
		} else {
			speakers = append(speakers, speaker)
		}
	}
	speakers = append(speakers, translate.NewSpeaker(cfg.TTS.Translate.Enabled, cfg.TTS.Translate.Language, cfg.TTS.Translate.BaseURL))
	return speakers
}

func provideAudioStore(cfg *config.Config, logger *slog.Logger) story.AudioStore {
	s3 := cfg.Storage.Audio.S3
	if s3.Enabled {
		store, err := audiostore.NewS3Store(s3.Endpoint, s3.AccessKey, s3.SecretKey, s3.Bucket, s3.Region, logger)
		if err == nil {
			logger.Info("story audio archived to object storage", "bucket", s3.Bucket)
			return store
		}
		logger.Error("failed to build s3 audio store, falling back to local directory", "error", err)
	}
	store, err := audiostore.NewLocalStore(cfg.Storage.Audio.Dir)
	if err != nil {
		logger.Error("local audio store unavailable, narration disabled", "error", err)
		return nil
	}
	return store
}

// narrator plays stories on its own mpv instance so narration never replaces
// the music track.
func provideNarrator(cfg *config.Config, logger *slog.Logger) (story.Narrator, func()) {
	player := mpv.NewPlayer(cfg.Media.PlayerPath, narrationSocket(cfg.Media.SocketPath), logger.With("player", "narration"))
	return player, func() {
		if err := player.Close(); err != nil {
			logger.Warn("failed to close narration player", "error", err)
		}
	}
}

func narrationSocket(musicSocket string) string {
	if strings.TrimSpace(musicSocket) == "" {
		return filepath.Join(os.TempDir(), "twilight-hud-narration.sock")
	}
	return musicSocket + ".narration"
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
}
