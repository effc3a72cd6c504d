package dubber

import (
	"MemeDubber/internal/ai"
	"MemeDubber/internal/service/audio"
	"MemeDubber/internal/service/dubs"
	"MemeDubber/internal/service/tts"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	res   ai.Extraction
	err   error
	calls int
}

func (f *fakeExtractor) ExtractCaption(_ context.Context, _ []byte) (ai.Extraction, error) {
	f.calls++
	return f.res, f.err
}

type fakeSynth struct {
	format  string
	err     error
	gotText string
	gotLang string
	calls   int
}

func (f *fakeSynth) Synthesize(_ context.Context, text, langCode string) (tts.Audio, error) {
	f.calls++
	f.gotText = text
	f.gotLang = langCode
	if f.err != nil {
		return tts.Audio{}, f.err
	}
	return tts.Audio{Data: []byte("audio-" + f.format), Format: f.format}, nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 8), B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestDubber(t *testing.T, extractor ai.Client, withHistory bool) (*Dubber, *fakeSynth, *fakeSynth) {
	t.Helper()
	cloud := &fakeSynth{format: "mp3"}
	local := &fakeSynth{format: "wav"}
	reg := tts.NewRegistry()
	reg.Register("gtts", cloud)
	reg.Register("chattts", local)

	store := audio.NewStore(filepath.Join(t.TempDir(), "artifacts"))

	var history HistoryRepo
	if withHistory {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		if err := dubs.InitSchema(db); err != nil {
			t.Fatalf("init schema: %v", err)
		}
		history = dubs.NewSQLiteRepo(db)
	}

	return New(extractor, reg, store, history, zap.NewNop().Sugar()), cloud, local
}

func TestDubPassesExtractionToSynthesizer(t *testing.T) {
	d, cloud, _ := newTestDubber(t, &fakeExtractor{res: ai.Extraction{Text: "hello", LanguageCode: "en"}}, false)

	res, err := d.Dub(context.Background(), "req-1", testImage(t), "gtts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cloud.gotText != "hello" || cloud.gotLang != "en" {
		t.Errorf("synthesizer received (%q, %q), want (hello, en)", cloud.gotText, cloud.gotLang)
	}
	if res.Transcript != "hello" {
		t.Errorf("transcript = %q", res.Transcript)
	}
	if res.AudioPath == "" || filepath.Ext(res.AudioFile) != ".mp3" {
		t.Errorf("bad artifact: file=%q path=%q", res.AudioFile, res.AudioPath)
	}
}

func TestDubEmptyTextSkipsSynthesis(t *testing.T) {
	d, cloud, _ := newTestDubber(t, &fakeExtractor{res: ai.Extraction{Text: "", LanguageCode: "en"}}, false)

	_, err := d.Dub(context.Background(), "req-2", testImage(t), "gtts")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
	if cloud.calls != 0 {
		t.Errorf("synthesizer was called %d times with empty transcript", cloud.calls)
	}
}

func TestDubUnparseableResponseIsNoText(t *testing.T) {
	d, cloud, _ := newTestDubber(t, &fakeExtractor{err: fmt.Errorf("%w: not json", ai.ErrUnparseable)}, false)

	_, err := d.Dub(context.Background(), "req-3", testImage(t), "gtts")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
	if cloud.calls != 0 {
		t.Error("synthesizer must not run after a malformed extraction")
	}
}

func TestDubExtractorFailurePropagates(t *testing.T) {
	netErr := errors.New("connection reset")
	d, _, _ := newTestDubber(t, &fakeExtractor{err: netErr}, false)

	_, err := d.Dub(context.Background(), "req-4", testImage(t), "gtts")
	if !errors.Is(err, netErr) {
		t.Fatalf("err = %v, want wrapped network error", err)
	}
	if errors.Is(err, ErrNoText) {
		t.Error("network failure must not be reported as no-text")
	}
}

func TestDubEnginesDoNotCrossContaminate(t *testing.T) {
	extractor := &fakeExtractor{res: ai.Extraction{Text: "same text", LanguageCode: "en"}}
	d, cloud, local := newTestDubber(t, extractor, false)
	img := testImage(t)

	resCloud, err := d.Dub(context.Background(), "req-5", img, "gtts")
	if err != nil {
		t.Fatalf("gtts: %v", err)
	}
	resLocal, err := d.Dub(context.Background(), "req-6", img, "chattts")
	if err != nil {
		t.Fatalf("chattts: %v", err)
	}

	if resCloud.AudioFile == resLocal.AudioFile {
		t.Fatalf("engines share artifact %q", resCloud.AudioFile)
	}
	if resCloud.Format != "mp3" || resLocal.Format != "wav" {
		t.Errorf("formats = %s, %s", resCloud.Format, resLocal.Format)
	}
	if cloud.calls != 1 || local.calls != 1 {
		t.Errorf("calls: cloud=%d local=%d", cloud.calls, local.calls)
	}
}

func TestDubUnknownEngine(t *testing.T) {
	extractor := &fakeExtractor{res: ai.Extraction{Text: "hi", LanguageCode: "en"}}
	d, _, _ := newTestDubber(t, extractor, false)

	_, err := d.Dub(context.Background(), "req-7", testImage(t), "espeak")
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if extractor.calls != 0 {
		t.Error("extractor must not be called for an unknown engine")
	}
}

func TestDubIdenticalRequestReusesArtifactPath(t *testing.T) {
	extractor := &fakeExtractor{res: ai.Extraction{Text: "hello", LanguageCode: "en"}}
	d, cloud, _ := newTestDubber(t, extractor, true)
	img := testImage(t)

	first, err := d.Dub(context.Background(), "req-8", img, "gtts")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := d.Dub(context.Background(), "req-9", img, "gtts")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if first.AudioPath != second.AudioPath {
		t.Errorf("paths differ: %q vs %q", first.AudioPath, second.AudioPath)
	}
	if !second.Cached {
		t.Error("second identical request must be served from cache")
	}
	if extractor.calls != 1 || cloud.calls != 1 {
		t.Errorf("external work repeated: extractor=%d synth=%d", extractor.calls, cloud.calls)
	}
}

func TestDubSynthesisFailure(t *testing.T) {
	d, cloud, _ := newTestDubber(t, &fakeExtractor{res: ai.Extraction{Text: "hi", LanguageCode: "en"}}, false)
	cloud.err = errors.New("quota exceeded")

	_, err := d.Dub(context.Background(), "req-10", testImage(t), "gtts")
	if err == nil || !errors.Is(err, cloud.err) {
		t.Fatalf("err = %v, want wrapped synthesis error", err)
	}
}

func TestDubReportsStages(t *testing.T) {
	d, _, _ := newTestDubber(t, &fakeExtractor{res: ai.Extraction{Text: "hello", LanguageCode: "en"}}, false)
	var stages []Stage
	d.SetReporter(func(_ string, stage Stage, _ string) {
		stages = append(stages, stage)
	})

	if _, err := d.Dub(context.Background(), "req-11", testImage(t), "gtts"); err != nil {
		t.Fatalf("dub: %v", err)
	}

	want := []Stage{StageReceived, StageExtracting, StageSynthesizing, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}
