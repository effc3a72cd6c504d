package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool   `env:"DEBUG_MODE"` // Режим дебага
	BindAddr  string `env:"BIND_ADDR"`  // Адрес HTTP-сервера, напр. 127.0.0.1:8080

	ArtifactsDir   string `env:"ARTIFACTS_DIR"`    // Папка с готовыми аудио-артефактами
	HistoryDBPath  string `env:"HISTORY_DB_PATH"`  // Путь к SQLite-базе истории озвучек
	HistoryLimit   int    `env:"HISTORY_LIMIT"`    // Сколько последних озвучек отдавать в UI
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES"` // Лимит размера загружаемой картинки

	// Общий переключатель сервиса извлечения текста и конфиги провайдеров
	ExtractorService string `env:"EXTRACTOR_SERVICE"` // gemini|openai, по умолчанию gemini
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig

	// TTS: движок по умолчанию для UI и конфиги движков
	DefaultEngine string `env:"TTS_ENGINE"` // gtts|chattts
	Gtts          GttsConfig
	ChatTTS       ChatTTSConfig
}

// GeminiConfig конфигурация извлечения текста через Google Gemini.
type GeminiConfig struct {
	APIKey         string  `env:"GOOGLE_API_KEY"`         // Ключ берём из .env/ENV. Если пуст — ошибка при старте с extractor=gemini
	Model          string  `env:"GEMINI_MODEL"`           // Модель, напр. gemini-2.5-flash
	Temperature    float32 `env:"GEMINI_TEMPERATURE"`     // Температура генерации
	ThinkingBudget int32   `env:"GEMINI_THINKING_BUDGET"` // Бюджет «размышлений» модели в токенах
}

// OpenAIConfig конфигурация альтернативного извлечения через OpenAI.
// Ключ OPENAI_API_KEY SDK читает из окружения самостоятельно.
type OpenAIConfig struct {
	Model string `env:"OPENAI_MODEL"` // Модель, напр. gpt-4o
}

// GttsConfig конфигурация облачного движка (Google Cloud Text-to-Speech).
type GttsConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	// Здесь храним дефолт (service-account.json в корне проекта) для удобства.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	SpeakingRate    float64 `env:"GTTS_SPEAKING_RATE"`
	Pitch           float64 `env:"GTTS_PITCH"`
	VolumeGainDb    float64 `env:"GTTS_VOLUME_DB"`
	// Эффект профиля устройства воспроизведения, напр. small-bluetooth-speaker-class-device
	EffectsProfileID string `env:"GTTS_EFFECTS_PROFILE_ID"`
}

// ChatTTSConfig конфигурация локального нейросетевого движка ChatTTS.
type ChatTTSConfig struct {
	Binary         string `env:"CHATTTS_BIN"`             // Имя/путь бинаря chattts
	ModelDir       string `env:"CHATTTS_MODEL_DIR"`       // Папка весов модели; скачиваются самим движком при первом запуске
	TimeoutSeconds int    `env:"CHATTTS_TIMEOUT_SECONDS"` // Таймаут одного синтеза (локальная модель медленная)
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:      false,
		BindAddr:       "127.0.0.1:8080",
		ArtifactsDir:   "artifacts",
		HistoryDBPath:  "dubs.db",
		HistoryLimit:   20,
		MaxUploadBytes: 10 << 20,
		// По умолчанию извлекаем текст через Gemini (как и задумано приложением)
		ExtractorService: "gemini",
		Gemini: GeminiConfig{
			APIKey:         "", // ключ берём из .env/ENV, если пусто — ошибка при старте
			Model:          "gemini-2.5-flash",
			Temperature:    0.7,
			ThinkingBudget: 1024,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		DefaultEngine: "gtts",
		Gtts: GttsConfig{
			CredentialsPath:  "service-account.json",
			SpeakingRate:     1.0,
			Pitch:            0.0,
			VolumeGainDb:     0.0,
			EffectsProfileID: "",
		},
		ChatTTS: ChatTTSConfig{
			Binary:         "chattts",
			ModelDir:       "models/chattts",
			TimeoutSeconds: 300,
		},
	}
}

// NewConfig загружает конфигурацию приложения.
func NewConfig() *Config {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	_ = env.Parse(cfg)

	flag.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага для отображения доп. инфы")
	flag.StringVar(&cfg.BindAddr, "bind-addr", cfg.BindAddr, "адрес HTTP-сервера, напр. 127.0.0.1:8080")
	flag.StringVar(&cfg.ArtifactsDir, "artifacts-dir", cfg.ArtifactsDir, "папка для готовых аудио-артефактов")
	flag.StringVar(&cfg.HistoryDBPath, "history-db", cfg.HistoryDBPath, "путь к SQLite-базе истории озвучек")
	flag.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "сколько последних озвучек отдавать в UI")
	flag.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", cfg.MaxUploadBytes, "лимит размера загружаемой картинки в байтах")
	// Извлечение текста
	flag.StringVar(&cfg.ExtractorService, "extractor-service", cfg.ExtractorService, "выбор сервиса извлечения текста: gemini|openai")
	flag.StringVar(&cfg.Gemini.APIKey, "google-api-key", cfg.Gemini.APIKey, "API ключ Google Gemini (перекрывает ENV)")
	flag.StringVar(&cfg.Gemini.Model, "gemini-model", cfg.Gemini.Model, "модель Gemini, напр. gemini-2.5-flash")
	flag.StringVar(&cfg.OpenAI.Model, "openai-model", cfg.OpenAI.Model, "модель OpenAI для извлечения, напр. gpt-4o")
	// TTS
	flag.StringVar(&cfg.DefaultEngine, "tts-engine", cfg.DefaultEngine, "движок TTS по умолчанию: gtts|chattts")
	flag.StringVar(&cfg.Gtts.CredentialsPath, "gtts-credentials", cfg.Gtts.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	flag.Float64Var(&cfg.Gtts.SpeakingRate, "gtts-speaking-rate", cfg.Gtts.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	flag.Float64Var(&cfg.Gtts.Pitch, "gtts-pitch", cfg.Gtts.Pitch, "тон (полутоны), может быть отрицательным")
	flag.Float64Var(&cfg.Gtts.VolumeGainDb, "gtts-volume-db", cfg.Gtts.VolumeGainDb, "усиление громкости (дБ), допустимо от -96.0 до +16.0")
	flag.StringVar(&cfg.Gtts.EffectsProfileID, "gtts-effects-profile-id", cfg.Gtts.EffectsProfileID, "EffectsProfileId, напр. small-bluetooth-speaker-class-device")
	flag.StringVar(&cfg.ChatTTS.Binary, "chattts-bin", cfg.ChatTTS.Binary, "имя или путь бинаря chattts")
	flag.StringVar(&cfg.ChatTTS.ModelDir, "chattts-model-dir", cfg.ChatTTS.ModelDir, "папка весов ChatTTS (качаются при первом запуске)")
	flag.IntVar(&cfg.ChatTTS.TimeoutSeconds, "chattts-timeout-seconds", cfg.ChatTTS.TimeoutSeconds, "таймаут одного синтеза ChatTTS в секундах")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	// Если ENV пуст, но в конфиге указан существующий файл ключа — устанавливаем ENV,
	// чтобы ADC нашёл его при вызове облачного движка.
	if strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) == "" {
		if cp := strings.TrimSpace(cfg.Gtts.CredentialsPath); cp != "" {
			if _, err := os.Stat(cp); err == nil {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
			}
		}
	}

	return cfg
}

// Validate проверяет согласованность конфигурации.
// Ключ Gemini обязателен, только если выбран сервис gemini: без него
// извлечение текста не заработает вовсе, поэтому падаем сразу,
// а не на первом запросе пользователя.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.ExtractorService)) {
	case "gemini":
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return fmt.Errorf("gemini: переменная окружения GOOGLE_API_KEY не задана; укажите её в .env или через флаг -google-api-key")
		}
	case "openai":
		// ключ проверит сам SDK при первом запросе
	default:
		return fmt.Errorf("extractor-service: неизвестный сервис %q (ожидается gemini|openai)", c.ExtractorService)
	}

	switch strings.ToLower(strings.TrimSpace(c.DefaultEngine)) {
	case "gtts", "chattts":
	default:
		return fmt.Errorf("tts-engine: неизвестный движок %q (ожидается gtts|chattts)", c.DefaultEngine)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max-upload-bytes: значение должно быть положительным, получено %d", c.MaxUploadBytes)
	}
	return nil
}
