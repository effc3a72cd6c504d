package chattts

import (
	"MemeDubber/internal/config"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeBinary кладёт во временную папку скрипт, изображающий chattts:
// пишет прогресс в stderr и кладёт содержимое в --output.
func fakeBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake is posix-only")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
echo "loading model" 1>&2
echo "synthesizing" 1>&2
out=""
while [ $# -gt 0 ]; do
	case "$1" in
	--output) out="$2"; shift 2 ;;
	*) shift ;;
	esac
done
printf 'RIFFfakewav' > "$out"
`
	path := filepath.Join(dir, "chattts")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestSynthesizeRelaysStderrAndReadsOutput(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(config.ChatTTSConfig{
		Binary:         fakeBinary(t),
		TimeoutSeconds: 30,
	}, zap.New(core).Sugar())

	aud, err := c.Synthesize(context.Background(), "привет, мир", "ru")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if aud.Format != "wav" {
		t.Errorf("format = %q, want wav", aud.Format)
	}
	if string(aud.Data) != "RIFFfakewav" {
		t.Errorf("data = %q", aud.Data)
	}

	relayed := 0
	for _, entry := range logs.All() {
		if entry.Message == "chattts" {
			relayed++
		}
	}
	if relayed != 2 {
		t.Errorf("relayed %d stderr lines, want 2", relayed)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	c := New(config.ChatTTSConfig{}, zap.NewNop().Sugar())
	if _, err := c.Synthesize(context.Background(), "   ", "en"); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSynthesizeMissingBinary(t *testing.T) {
	c := New(config.ChatTTSConfig{Binary: "chattts-does-not-exist"}, zap.NewNop().Sugar())
	if _, err := c.Synthesize(context.Background(), "hello", "en"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
