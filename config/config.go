package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	BackendGoCV   = "gocv"
	BackendRemote = "remote"
)

type Config struct {
	Port         int
	UploadDir    string
	AnnotatedDir string
	StaticDir    string

	DetectorBackend string
	ModelPath       string
	ClassTablePath  string
	InferenceURL    string

	APIKey         string
	LLMModel       string
	LLMTemperature float64
	LLMTimeout     time.Duration

	TelegramToken string
	HistoryDB     string
	LogLevel      string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8000),
		UploadDir:    getEnv("UPLOAD_DIR", "static/uploads"),
		AnnotatedDir: getEnv("ANNOTATED_DIR", "static/predict"),
		StaticDir:    getEnv("STATIC_DIR", "static"),

		DetectorBackend: getEnv("DETECTOR_BACKEND", BackendGoCV),
		ModelPath:       getEnv("MODEL_PATH", "disease/disease.onnx"),
		ClassTablePath:  getEnv("CLASS_TABLE_PATH", "disease/data.yaml"),
		InferenceURL:    getEnv("INFERENCE_URL", "http://localhost:5000/predict"),

		APIKey:         os.Getenv("API_KEY"),
		LLMModel:       getEnv("LLM_MODEL", "gemini-pro"),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 0)) * time.Second,

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		HistoryDB:     os.Getenv("HISTORY_DB"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("API_KEY is required")
	}
	switch c.DetectorBackend {
	case BackendGoCV, BackendRemote:
	default:
		return errors.Errorf("unknown DETECTOR_BACKEND %q", c.DetectorBackend)
	}
	return nil
}

// ListenAddr возвращает адрес HTTP-сервера
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}
