package service

import (
	"strings"
	"time"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/policy"
)

type Option func(s *Service)

func WithPolicy(p policy.Authorizer) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSuperadminEmail names the reserved account that is promoted on first sync
// and cannot be demoted or blocked.
func WithSuperadminEmail(email string) Option {
	return func(s *Service) {
		s.superadminEmail = strings.TrimSpace(email)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}
