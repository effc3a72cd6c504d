package audio

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// Store хранит аудио-артефакты в одной папке под контентно-адресуемыми именами.
// Имя строится из blake3-хэша исходной картинки и движка, поэтому повторный
// запрос с той же картинкой перезаписывает тот же файл, а разные движки
// никогда не пересекаются.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "artifacts"
	}
	return &Store{dir: dir}
}

// Hash возвращает blake3-хэш данных в hex.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ArtifactName строит имя файла артефакта: <hash>_<engine>.<ext>.
func ArtifactName(imageHash, engine, format string) string {
	ext := strings.TrimPrefix(strings.ToLower(format), ".")
	return fmt.Sprintf("%s_%s.%s", imageHash, engine, ext)
}

// Save записывает данные артефакта и возвращает абсолютный путь к файлу.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Path возвращает путь к артефакту по имени. Имя не должно выходить за
// пределы папки хранилища — защита от ../ в HTTP-запросах.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid artifact name: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists сообщает, существует ли артефакт с данным именем.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	if _, err := os.Stat(p); err != nil {
		return false
	}
	return true
}

// Dir возвращает папку хранилища.
func (s *Store) Dir() string { return s.dir }
