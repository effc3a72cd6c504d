package dubber

import (
	"MemeDubber/internal/ai"
	"MemeDubber/internal/service/audio"
	"MemeDubber/internal/service/dubs"
	"MemeDubber/internal/service/image"
	"MemeDubber/internal/service/tts"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoText в картинке не нашлось текста и модель не смогла ничего предложить.
// Синтез при этом не вызывается.
var ErrNoText = errors.New("no text found in the image")

// ErrBadImage загруженные данные не удалось разобрать как картинку.
var ErrBadImage = errors.New("uploaded data is not a valid image")

// Stage этап обработки запроса; транслируется в ленту прогресса UI.
type Stage string

const (
	StageReceived     Stage = "received"
	StageExtracting   Stage = "extracting"
	StageSynthesizing Stage = "synthesizing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Reporter получает события прогресса. Может быть nil.
type Reporter func(requestID string, stage Stage, detail string)

// Result итог озвучки одного мема.
type Result struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
	AudioFile    string `json:"audio_file"`
	AudioPath    string `json:"-"`
	Format       string `json:"format"`
	Cached       bool   `json:"cached"`
}

// HistoryRepo история озвучек; nil-значение допустимо (история выключена).
type HistoryRepo interface {
	Upsert(ctx context.Context, d dubs.Dub) (dubs.Dub, error)
	GetByHashEngine(ctx context.Context, imageHash, engine string) (dubs.Dub, bool, error)
}

// Dubber оркестратор: картинка → извлечение текста → синтез → артефакт.
type Dubber struct {
	extractor ai.Client
	engines   *tts.Registry
	processor *image.Processor
	store     *audio.Store
	history   HistoryRepo
	logger    *zap.SugaredLogger
	report    Reporter
}

func New(extractor ai.Client, engines *tts.Registry, store *audio.Store, history HistoryRepo, logger *zap.SugaredLogger) *Dubber {
	return &Dubber{
		extractor: extractor,
		engines:   engines,
		processor: image.NewProcessor(),
		store:     store,
		history:   history,
		logger:    logger,
	}
}

// SetReporter подключает ленту прогресса.
func (d *Dubber) SetReporter(r Reporter) { d.report = r }

// Dub выполняет сценарий «озвучить мем» один раз.
// requestID сквозной идентификатор для логов и событий прогресса.
func (d *Dubber) Dub(ctx context.Context, requestID string, imageData []byte, engineName string) (Result, error) {
	d.emit(requestID, StageReceived, engineName)

	// Движок проверяем до обращения к модели: на неизвестное имя
	// не стоит тратить внешний вызов.
	engine, err := d.engines.Get(engineName)
	if err != nil {
		d.emit(requestID, StageFailed, err.Error())
		return Result{}, err
	}

	processed, err := d.processor.Process(imageData)
	if err != nil {
		d.emit(requestID, StageFailed, err.Error())
		return Result{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	imageHash := audio.Hash(processed.Data)

	// Та же картинка тем же движком уже озвучена — отдаём готовый артефакт
	if d.history != nil {
		if prev, ok, herr := d.history.GetByHashEngine(ctx, imageHash, engineName); herr == nil && ok && d.store.Exists(prev.AudioFile) {
			path, _ := d.store.Path(prev.AudioFile)
			d.logger.Infow("Озвучка найдена в кэше", "request_id", requestID, "hash", imageHash, "engine", engineName)
			d.emit(requestID, StageDone, prev.AudioFile)
			return Result{
				Transcript:   prev.Transcript,
				LanguageCode: prev.LanguageCode,
				AudioFile:    prev.AudioFile,
				AudioPath:    path,
				Format:       prev.Format,
				Cached:       true,
			}, nil
		}
	}

	d.emit(requestID, StageExtracting, "")
	extraction, err := d.extractor.ExtractCaption(ctx, processed.Data)
	if err != nil {
		// Нечитаемый ответ модели приравниваем к «текст не найден»,
		// сетевые и прочие сбои отдаём как есть.
		if errors.Is(err, ai.ErrUnparseable) {
			d.logger.Warnw("Ответ модели не разобран, считаем что текста нет", "request_id", requestID, "error", err)
			d.emit(requestID, StageFailed, ErrNoText.Error())
			return Result{}, ErrNoText
		}
		d.emit(requestID, StageFailed, err.Error())
		return Result{}, fmt.Errorf("extract caption: %w", err)
	}
	if extraction.Text == "" {
		d.emit(requestID, StageFailed, ErrNoText.Error())
		return Result{}, ErrNoText
	}

	d.emit(requestID, StageSynthesizing, extraction.LanguageCode)
	aud, err := engine.Synthesize(ctx, extraction.Text, extraction.LanguageCode)
	if err != nil {
		d.emit(requestID, StageFailed, err.Error())
		return Result{}, fmt.Errorf("synthesize audio: %w", err)
	}

	name := audio.ArtifactName(imageHash, engineName, aud.Format)
	path, err := d.store.Save(name, aud.Data)
	if err != nil {
		d.emit(requestID, StageFailed, err.Error())
		return Result{}, fmt.Errorf("save artifact: %w", err)
	}

	if d.history != nil {
		if _, herr := d.history.Upsert(ctx, dubs.Dub{
			ImageHash:    imageHash,
			Engine:       engineName,
			Transcript:   extraction.Text,
			LanguageCode: extraction.LanguageCode,
			AudioFile:    name,
			Format:       aud.Format,
		}); herr != nil {
			// история вторична: запись не удалась — озвучка всё равно готова
			d.logger.Warnw("Не удалось записать озвучку в историю", "request_id", requestID, "error", herr)
		}
	}

	d.logger.Infow("Озвучка готова",
		"request_id", requestID,
		"engine", engineName,
		"lang", extraction.LanguageCode,
		"artifact", name,
		"bytes", len(aud.Data),
	)
	d.emit(requestID, StageDone, name)

	return Result{
		Transcript:   extraction.Text,
		LanguageCode: extraction.LanguageCode,
		AudioFile:    name,
		AudioPath:    path,
		Format:       aud.Format,
	}, nil
}

func (d *Dubber) emit(requestID string, stage Stage, detail string) {
	if d.report != nil {
		d.report(requestID, stage, detail)
	}
}
