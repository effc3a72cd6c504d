package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrUnparseable ответ модели не удалось привести к ожидаемой структуре
// даже после починки JSON. Оркестратор трактует это как «текст не найден»,
// а не как сбой запроса.
var ErrUnparseable = errors.New("extract: unparseable model response")

// extractionPayload формат ответа модели. Поле language принимаем как запасной
// ключ: модели периодически возвращают его вместо language_code.
type extractionPayload struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Language     string `json:"language"`
}

// ParseExtraction разбирает сырой ответ модели в Extraction.
// Модель просят вернуть чистый JSON, но на практике ответ бывает обёрнут
// в markdown-ограждение или слегка сломан — перед повторным разбором
// прогоняем его через jsonrepair. Пустой text здесь не ошибка: решение
// «текст не найден» принимает оркестратор.
func ParseExtraction(raw string) (Extraction, error) {
	s := strings.TrimSpace(raw)
	s = stripFence(s)
	if s == "" {
		return Extraction{}, fmt.Errorf("%w: empty response", ErrUnparseable)
	}

	var p extractionPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		fixed, rerr := jsonrepair.JSONRepair(s)
		if rerr != nil {
			return Extraction{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		if err := json.Unmarshal([]byte(fixed), &p); err != nil {
			return Extraction{}, fmt.Errorf("%w after repair: %v", ErrUnparseable, err)
		}
	}

	lang := strings.TrimSpace(p.LanguageCode)
	if lang == "" {
		lang = strings.TrimSpace(p.Language)
	}
	if lang == "" {
		lang = "en"
	}

	return Extraction{
		Text:         strings.TrimSpace(p.Text),
		LanguageCode: strings.ToLower(lang),
	}, nil
}

// stripFence снимает markdown-ограждение вида ```json ... ``` вокруг ответа.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// первая строка — метка языка ограждения (json и т.п.)
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
