package dispatcher

import (
	"log/slog"

	"github.com/viant/qgate/service/session"
)

// Option customises the dispatcher.
type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSession sets the host context source.
func WithSession(sessions *session.Service) Option {
	return func(s *Service) {
		s.sessions = sessions
	}
}
