package gtts

import (
	"MemeDubber/internal/config"
	"MemeDubber/internal/service/tts"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// Client облачный движок: Google Cloud Text-to-Speech, выдаёт MP3.
type Client struct {
	cfg    config.GttsConfig
	logger *zap.SugaredLogger
}

func New(cfg config.GttsConfig, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Synthesize выполняет запрос к Google TTS и возвращает MP3-контент.
func (c *Client) Synthesize(ctx context.Context, text string, langCode string) (tts.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return tts.Audio{}, errors.New("gtts: empty input text")
	}

	// Сначала проверяем учётные данные: без них SDK вернёт малопонятную
	// ошибку RPC, а пользователю нужна инструкция по настройке окружения.
	if _, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform"); err != nil {
		return tts.Audio{}, errors.New("gtts: ADC credentials not found. Set GOOGLE_APPLICATION_CREDENTIALS to a service account JSON or run with default credentials")
	}

	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gtts: create client: %w", err)
	}
	defer ttsClient.Close()

	input := &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}

	voice := &ttspb.VoiceSelectionParams{
		LanguageCode: bcp47(langCode),
		SsmlGender:   ttspb.SsmlVoiceGender_NEUTRAL,
	}

	// Только MP3
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  c.cfg.SpeakingRate,
		Pitch:         c.cfg.Pitch,
		VolumeGainDb:  c.cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(c.cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}

	req := &ttspb.SynthesizeSpeechRequest{Input: input, Voice: voice, AudioConfig: audio}
	started := time.Now()
	resp, err := ttsClient.SynthesizeSpeech(ctx, req)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gtts: synthesize: %w", err)
	}
	if c.logger != nil {
		c.logger.Infow("Google TTS synthesize completed", "lang", langCode, "took", time.Since(started).String(), "bytes", len(resp.GetAudioContent()))
	}

	return tts.Audio{Data: resp.GetAudioContent(), Format: "mp3"}, nil
}

// bcp47 переводит короткий код языка из экстракции в BCP-47 код,
// который понимает Cloud TTS. Неизвестные коды с регионом отдаём как есть.
func bcp47(langCode string) string {
	lc := strings.ToLower(strings.TrimSpace(langCode))
	switch lc {
	case "", "en":
		return "en-US"
	case "zh", "zh-cn":
		return "cmn-CN"
	case "zh-tw":
		return "cmn-TW"
	case "ja":
		return "ja-JP"
	case "es":
		return "es-ES"
	case "ru":
		return "ru-RU"
	case "de":
		return "de-DE"
	case "fr":
		return "fr-FR"
	case "ko":
		return "ko-KR"
	case "pt":
		return "pt-BR"
	case "it":
		return "it-IT"
	}
	if strings.Contains(lc, "-") {
		return lc
	}
	return lc + "-" + strings.ToUpper(lc)
}
