// Package service implements the open-house lead workflows: check-in intake,
// pipeline moves, dashboard aggregates and event scorecards.
package service

import (
	"time"

	"openhouse_backend/internal/events"
	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/phone"
)

// Service provides business logic for open-house leads.
type Service struct {
	repo   repository.LeadsRepository
	events ports.EventReader
	visits ports.VisitTracker
	bus    events.Publisher
	log    *logger.Logger

	phones phone.Normalizer
	loc    *time.Location
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPhoneRegion sets the region for numbers entered without a country code.
func WithPhoneRegion(region string) Option {
	return func(s *Service) { s.phones = phone.NewNormalizer(region) }
}

// WithLocation sets the business timezone that bounds the "this week" stats
// window. Return-visit days are bounded by the visit tracker's own location.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a new leads service.
func New(repo repository.LeadsRepository, eventReader ports.EventReader, visits ports.VisitTracker, bus events.Publisher, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		events: eventReader,
		visits: visits,
		bus:    bus,
		log:    log,
		phones: phone.NewNormalizer(phone.DefaultRegion),
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
