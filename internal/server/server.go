package server

import (
	"MemeDubber/internal/config"
	"MemeDubber/internal/service/audio"
	"MemeDubber/internal/service/dubber"
	"MemeDubber/internal/service/dubs"
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// History читающая сторона истории озвучек для UI.
type History interface {
	Recent(ctx context.Context, n int) ([]dubs.Dub, error)
}

// Server HTTP-интерфейс приложения: страница, приём картинок, раздача артефактов.
type Server struct {
	cfg     *config.Config
	srv     *http.Server
	dubber  *dubber.Dubber
	history History
	store   *audio.Store
	hub     *Hub
	logger  *zap.SugaredLogger
	running atomic.Bool
}

func NewServer(cfg *config.Config, d *dubber.Dubber, history History, store *audio.Store, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:     cfg,
		dubber:  d,
		history: history,
		store:   store,
		hub:     NewHub(logger),
		logger:  logger,
	}
	// Этапы обработки транслируем подписчикам ленты прогресса
	d.SetReporter(s.hub.Report)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/dub", s.handleDub)
	mux.HandleFunc("/api/dubs", s.handleDubs)
	mux.HandleFunc("/api/events", s.hub.handleEvents)
	mux.HandleFunc("/audio/", s.handleAudio)

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Синтез локальной моделью может идти минуты — таймаут записи с запасом
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("Meme Dubber listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("HTTP server stopped with error", "error", err)
		} else {
			s.logger.Infow("HTTP server stopped")
		}
	}()

	// Watch for context cancellation to stop the server
	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("meme-dubber shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.cfg.BindAddr }
