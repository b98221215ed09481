package service

import (
	"time"

	"github.com/okian/guildscore/internal/adapters/repository"
	"github.com/okian/guildscore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGuild sets the guild whose reports are scored.
func WithGuild(name, server, region string) Option {
	return func(s *Service) {
		s.guild = Guild{Name: name, Server: server, Region: region}
	}
}

// WithReportLimit sets how many recent reports each run requests.
func WithReportLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.reportLimit = limit
		}
	}
}

// WithPercentileThreshold sets the nearest-rank threshold passed to scoring.
// It is not range-checked here; scoring rejects bad values on every run.
func WithPercentileThreshold(p int) Option {
	return func(s *Service) {
		s.threshold = p
	}
}

// WithRefreshInterval sets how often Start re-runs the pipeline.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStore sets the scoreboard store runs publish to.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
