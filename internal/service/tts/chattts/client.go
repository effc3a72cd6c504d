package chattts

import (
	"MemeDubber/internal/config"
	"MemeDubber/internal/service/tts"
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client локальный нейросетевой движок: субпроцесс chattts, выдаёт WAV.
// Веса модели (несколько гигабайт) движок скачивает сам при первом запуске;
// папку для них фиксируем через HF_HOME, чтобы кэш не расползался по системе.
type Client struct {
	cfg    config.ChatTTSConfig
	logger *zap.SugaredLogger
}

func New(cfg config.ChatTTSConfig, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Synthesize запускает chattts и возвращает WAV-контент.
// langCode движок не принимает: ChatTTS определяет язык по самому тексту.
func (c *Client) Synthesize(ctx context.Context, text string, langCode string) (tts.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return tts.Audio{}, errors.New("chattts: empty input text")
	}

	bin := c.cfg.Binary
	if bin == "" {
		bin = "chattts"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return tts.Audio{}, fmt.Errorf("chattts: binary %q not found in PATH; install the chattts CLI or set CHATTTS_BIN", bin)
	}

	timeout := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "chattts-*.wav")
	if err != nil {
		return tts.Audio{}, fmt.Errorf("chattts: create temp output: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(runCtx, bin, "--output", outPath, text)
	if dir := strings.TrimSpace(c.cfg.ModelDir); dir != "" {
		abs, aerr := filepath.Abs(dir)
		if aerr == nil {
			dir = abs
		}
		cmd.Env = append(os.Environ(), "HF_HOME="+dir)
	}

	stderr, serr := cmd.StderrPipe()
	started := time.Now()
	if err := cmd.Start(); err != nil {
		return tts.Audio{}, fmt.Errorf("chattts: start %q: %w", bin, err)
	}

	// Прогресс скачивания весов и инференса движок пишет в stderr — транслируем в лог.
	// Пайп дочитываем до EOF прежде чем звать Wait: Wait закрывает пайпы.
	relayDone := make(chan struct{})
	if serr != nil {
		if c.logger != nil {
			c.logger.Warnw("chattts: stderr pipe unavailable", "error", serr)
		}
		close(relayDone)
	} else {
		go func() {
			defer close(relayDone)
			scanner := bufio.NewScanner(stderr)
			for scanner.Scan() {
				if c.logger != nil {
					c.logger.Debugw("chattts", "line", scanner.Text())
				}
			}
		}()
	}
	<-relayDone

	if err := cmd.Wait(); err != nil {
		if runCtx.Err() != nil {
			return tts.Audio{}, fmt.Errorf("chattts: synthesis timed out after %s", timeout)
		}
		return tts.Audio{}, fmt.Errorf("chattts: synthesis failed: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("chattts: read output: %w", err)
	}
	if len(data) == 0 {
		return tts.Audio{}, errors.New("chattts: produced empty audio")
	}
	if c.logger != nil {
		c.logger.Infow("ChatTTS synthesize completed", "took", time.Since(started).String(), "bytes", len(data))
	}

	return tts.Audio{Data: data, Format: "wav"}, nil
}
