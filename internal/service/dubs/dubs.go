package dubs

import "time"

// Dub одна выполненная озвучка мема.
type Dub struct {
	ID           int64     `json:"id"`
	ImageHash    string    `json:"image_hash"`
	Engine       string    `json:"engine"`
	Transcript   string    `json:"transcript"`
	LanguageCode string    `json:"language_code"`
	AudioFile    string    `json:"audio_file"` // имя файла в хранилище артефактов
	Format       string    `json:"format"`
	CreatedAt    time.Time `json:"created_at"`
}
