package player

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player воспроизводит аудио потоком в зависимости от формата.
// Используется только CLI-утилитой: веб-интерфейс проигрывает артефакт сам.
type Player interface {
	Play(format string, r io.ReadCloser) error
}

// Default реализует Player и поддерживает mp3 и wav — форматы двух движков.
type Default struct{}

func New() *Default { return &Default{} }

func (d *Default) Play(format string, r io.ReadCloser) error {
	var (
		streamer beep.StreamSeekCloser
		bformat  beep.Format
		err      error
	)
	switch strings.ToLower(format) {
	case "mp3":
		streamer, bformat, err = mp3.Decode(r)
	case "wav":
		streamer, bformat, err = wav.Decode(r)
	default:
		return fmt.Errorf("unsupported format %q for direct playback; use mp3 or wav", format)
	}
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(bformat.SampleRate, bformat.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() { close(done) })))
	<-done
	return nil
}
