package main

import (
	"MemeDubber/internal/ai"
	"MemeDubber/internal/config"
	"MemeDubber/internal/service/audio"
	"MemeDubber/internal/service/dubber"
	"MemeDubber/internal/service/tts"
	"MemeDubber/internal/service/tts/chattts"
	"MemeDubber/internal/service/tts/gtts"
	"MemeDubber/internal/service/tts/player"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// Утилита для разовой озвучки мема из файла, без веб-сервера:
//
//	dubber -image meme.png [-engine gtts|chattts] [-play]
func main() {
	var (
		imagePath string
		engine    string
		play      bool
	)
	flag.StringVar(&imagePath, "image", "", "путь к файлу картинки (обязателен)")
	flag.StringVar(&engine, "engine", "", "движок TTS: gtts|chattts (по умолчанию из конфигурации)")
	flag.BoolVar(&play, "play", false, "проиграть результат после синтеза")
	// NewConfig вызовет flag.Parse и подхватит общие флаги вместе с нашими
	cfg := config.NewConfig()

	if imagePath == "" {
		log.Fatal("укажите картинку: -image meme.png")
	}
	if engine == "" {
		engine = cfg.DefaultEngine
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var extractor ai.Client
	switch strings.ToLower(cfg.ExtractorService) {
	case "openai":
		oClient := openai.NewClient()
		extractor = ai.NewOpenAIClient(&oClient, cfg.OpenAI, sugar)
	default:
		extractor, err = ai.NewGeminiClient(ctx, cfg.Gemini, sugar)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
	}

	registry := tts.NewRegistry()
	registry.Register("gtts", gtts.New(cfg.Gtts, sugar))
	registry.Register("chattts", chattts.New(cfg.ChatTTS, sugar))

	store := audio.NewStore(cfg.ArtifactsDir)

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("read image: %v", err)
	}

	// История в CLI не ведётся — передаём nil
	d := dubber.New(extractor, registry, store, nil, sugar)
	res, err := d.Dub(ctx, uuid.NewString(), imageData, engine)
	if err != nil {
		log.Fatalf("dub: %v", err)
	}

	fmt.Printf("Transcript [%s]: %s\n", res.LanguageCode, res.Transcript)
	fmt.Printf("Audio: %s\n", res.AudioPath)

	if play {
		f, err := os.Open(res.AudioPath)
		if err != nil {
			log.Fatalf("open artifact: %v", err)
		}
		if err := player.New().Play(res.Format, f); err != nil {
			log.Fatalf("play artifact: %v", err)
		}
	}
}
