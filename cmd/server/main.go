package main

import (
	"MemeDubber/internal/ai"
	"MemeDubber/internal/config"
	"MemeDubber/internal/server"
	"MemeDubber/internal/service/audio"
	"MemeDubber/internal/service/dubber"
	"MemeDubber/internal/service/dubs"
	"MemeDubber/internal/service/tts"
	"MemeDubber/internal/service/tts/chattts"
	"MemeDubber/internal/service/tts/gtts"
	"context"
	"database/sql"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()
	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	sugar.Infow(
		"Starting Meme Dubber",
		"DebugMode", cfg.DebugMode,
		"BindAddr", cfg.BindAddr,
		"Extractor", cfg.ExtractorService,
		"DefaultEngine", cfg.DefaultEngine,
	)

	// Экстрактор текста по переключателю сервиса
	var extractor ai.Client
	switch strings.ToLower(cfg.ExtractorService) {
	case "openai":
		oClient := openai.NewClient() // использует переменные окружения, напр. OPENAI_API_KEY
		extractor = ai.NewOpenAIClient(&oClient, cfg.OpenAI, sugar)
	default:
		extractor, err = ai.NewGeminiClient(ctx, cfg.Gemini, sugar)
		if err != nil {
			sugar.Errorw("failed to create Gemini client", "error", err)
			return
		}
	}

	// Замкнутый набор TTS-движков
	registry := tts.NewRegistry()
	registry.Register("gtts", gtts.New(cfg.Gtts, sugar))
	registry.Register("chattts", chattts.New(cfg.ChatTTS, sugar))

	store := audio.NewStore(cfg.ArtifactsDir)

	// История озвучек (SQLite)
	db, err := sql.Open("sqlite3", "file:"+cfg.HistoryDBPath)
	if err != nil {
		sugar.Errorw("failed to open history db", "path", cfg.HistoryDBPath, "error", err)
		return
	}
	defer db.Close()
	if err := dubs.InitSchema(db); err != nil {
		sugar.Errorw("failed to init history schema", "error", err)
		return
	}
	repo := dubs.NewSQLiteRepo(db)

	d := dubber.New(extractor, registry, store, repo, sugar)

	srv := server.NewServer(cfg, d, repo, store, sugar)
	if err := srv.Start(ctx); err != nil {
		sugar.Errorw("failed to start server", "error", err)
		return
	}

	<-ctx.Done()
	sugar.Infow("Shutting down")
}
