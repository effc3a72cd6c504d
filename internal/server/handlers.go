package server

import (
	"MemeDubber/internal/service/dubber"
	"MemeDubber/internal/service/tts"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

//go:embed static/index.html
var indexHTML []byte

// dubResponse JSON-ответ на запрос озвучки.
type dubResponse struct {
	RequestID    string `json:"request_id"`
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
	AudioFile    string `json:"audio_file"`
	AudioURL     string `json:"audio_url"`
	Format       string `json:"format"`
	Cached       bool   `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// handleDub принимает multipart-форму с картинкой и именем движка и
// возвращает транскрипт вместе со ссылкой на готовый артефакт.
func (s *Server) handleDub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed; use POST", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	requestID := uuid.NewString()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file; please upload an image first")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded image")
		return
	}

	engine := strings.TrimSpace(r.FormValue("engine"))
	if engine == "" {
		engine = s.cfg.DefaultEngine
	}

	s.logger.Infow("Получен запрос на озвучку",
		"request_id", requestID,
		"engine", engine,
		"bytes", len(imageData),
		"remote", r.RemoteAddr,
	)

	res, err := s.dubber.Dub(r.Context(), requestID, imageData, engine)
	if err != nil {
		switch {
		case errors.Is(err, dubber.ErrNoText):
			writeError(w, http.StatusUnprocessableEntity, "No text found in the image. Please try another image.")
		case errors.Is(err, dubber.ErrBadImage), errors.Is(err, tts.ErrUnknownEngine):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Errorw("Озвучка не удалась", "request_id", requestID, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, dubResponse{
		RequestID:    requestID,
		Transcript:   res.Transcript,
		LanguageCode: res.LanguageCode,
		AudioFile:    res.AudioFile,
		AudioURL:     "/audio/" + res.AudioFile,
		Format:       res.Format,
		Cached:       res.Cached,
	})
}

// handleAudio раздаёт артефакты из хранилища. Имя файла валидируется
// хранилищем, наружу папка артефактов не торчит.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed; use GET", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/audio/")
	path, err := s.store.Path(name)
	if err != nil {
		http.Error(w, "invalid artifact name", http.StatusBadRequest)
		return
	}
	switch filepath.Ext(name) {
	case ".mp3":
		w.Header().Set("Content-Type", "audio/mpeg")
	case ".wav":
		w.Header().Set("Content-Type", "audio/wav")
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDubs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed; use GET", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	recent, err := s.history.Recent(r.Context(), s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Errorw("Не удалось прочитать историю озвучек", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dub history")
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
