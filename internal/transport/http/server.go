package http

import (
	"context"
	"net/http"

	"github.com/asquebay/simple-storefront/internal/config"
)

// Server — это обёртка над стандартным http.Server
type Server struct {
	httpServer *http.Server
}

// NewServer создает и конфигурирует экземпляр Server
func NewServer(cfg config.HTTPServer, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.Timeout,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			IdleTimeout:       4 * cfg.Timeout,
		},
	}
}

// Addr возвращает адрес, на котором слушает сервер
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run запускает HTTP-сервер
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown останавливает сервер, дожидаясь завершения активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
