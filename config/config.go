package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	RatingsBackendSQLite   = "sqlite"
	RatingsBackendPostgres = "postgres"
	RatingsBackendSheets   = "sheets"
)

type Config struct {
	Server   Server
	Log      Log
	LLM      LLM
	Game     Game
	Ratings  Ratings
	Database Database
	Sheets   Sheets
	TTS      TTS
}

type Server struct {
	Port string
}

type Log struct {
	Level  string
	Pretty bool
}

type LLM struct {
	GeminiApiKey        string
	Model               string
	QuestionTemperature float32
	MaxAttempts         int
	RetryDelay          time.Duration
}

type Game struct {
	Language string
}

type Ratings struct {
	Backend string
}

type Database struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type Sheets struct {
	SpreadsheetID   string
	CredentialsFile string
	Range           string
}

// TTS configures narration of the prompt text.
type TTS struct {
	Enabled    bool
	Language   string
	Endpoint   string
	AudioDir   string
	PublicPath string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("QUESTION_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_ATTEMPTS", 3)
	v.SetDefault("LLM_RETRY_DELAY", "1s")
	v.SetDefault("GAME_LANGUAGE", "English")
	v.SetDefault("RATINGS_BACKEND", RatingsBackendSQLite)
	v.SetDefault("SQLITE_PATH", "quiz_feedback.db")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("SHEETS_RANGE", "Sheet1!A:C")
	v.SetDefault("TTS_ENABLED", true)
	v.SetDefault("TTS_LANGUAGE", "en")
	v.SetDefault("TTS_ENDPOINT", "https://translate.google.com/translate_tts")
	v.SetDefault("AUDIO_DIR", "./audio")
	v.SetDefault("AUDIO_PUBLIC_PATH", "/audio")
}

func NewConfig() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(path)

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Log.Level = v.GetString("LOG_LEVEL")
	config.Log.Pretty = v.GetBool("LOG_PRETTY")

	config.LLM.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.LLM.Model = v.GetString("GEMINI_MODEL")
	config.LLM.QuestionTemperature = float32(v.GetFloat64("QUESTION_TEMPERATURE"))
	config.LLM.MaxAttempts = v.GetInt("LLM_MAX_ATTEMPTS")
	config.LLM.RetryDelay = v.GetDuration("LLM_RETRY_DELAY")
	if config.LLM.MaxAttempts < 1 {
		config.LLM.MaxAttempts = 1
	}

	config.Game.Language = v.GetString("GAME_LANGUAGE")
	config.Ratings.Backend = v.GetString("RATINGS_BACKEND")

	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	config.Database.SQLitePath = v.GetString("SQLITE_PATH")

	config.Sheets.SpreadsheetID = v.GetString("SHEETS_SPREADSHEET_ID")
	config.Sheets.CredentialsFile = v.GetString("SHEETS_CREDENTIALS_FILE")
	config.Sheets.Range = v.GetString("SHEETS_RANGE")

	config.TTS.Enabled = v.GetBool("TTS_ENABLED")
	config.TTS.Language = v.GetString("TTS_LANGUAGE")
	config.TTS.Endpoint = v.GetString("TTS_ENDPOINT")
	config.TTS.AudioDir = v.GetString("AUDIO_DIR")
	config.TTS.PublicPath = v.GetString("AUDIO_PUBLIC_PATH")

	log.Info().
		Str("port", config.Server.Port).
		Str("model", config.LLM.Model).
		Int("maxAttempts", config.LLM.MaxAttempts).
		Dur("retryDelay", config.LLM.RetryDelay).
		Str("ratingsBackend", config.Ratings.Backend).
		Bool("tts", config.TTS.Enabled).
		Bool("geminiKeySet", config.LLM.GeminiApiKey != "").
		Msg("Config loaded")
	return &config, nil
}
