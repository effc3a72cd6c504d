package tts

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEngine выбранное имя движка отсутствует в наборе.
var ErrUnknownEngine = errors.New("tts: unknown engine")

// Audio результат синтеза: байты аудио и формат ("mp3" или "wav").
type Audio struct {
	Data   []byte
	Format string
}

// Synthesizer абстракция TTS-движка. Метод синтезирует речь и возвращает контент,
// ничего не записывая на диск — сохранением занимается оркестратор.
// langCode — код языка текста (en, ja, zh-tw и т.п.); движок волен его игнорировать.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, langCode string) (Audio, error)
}

// Registry замкнутый набор именованных движков. Выбор движка в запросе —
// строго по имени из этого набора, неизвестное имя — ошибка, а не падение.
type Registry struct {
	engines map[string]Synthesizer
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Synthesizer)}
}

func (r *Registry) Register(name string, s Synthesizer) {
	r.engines[name] = s
}

func (r *Registry) Get(name string) (Synthesizer, error) {
	s, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEngine, name, r.Names())
	}
	return s, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
