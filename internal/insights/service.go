// Package insights ties a ledger source to signal detection, persona
// classification and what-if simulation for one user at a time.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/ledger"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/persona"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/whatif"
)

// Service answers per-user insight requests. It holds no per-user state:
// every call reloads the user's snapshot from the source.
type Service struct {
	source     ledger.Source
	windowDays int
	now        func() time.Time
	log        zerolog.Logger

	archive       jobs.Publisher
	archivePrefix string
	maxRetries    int
}

// Option configures a Service.
type Option func(*Service)

// WithArchive enables archiving of exports under prefix through publisher.
func WithArchive(publisher jobs.Publisher, prefix string, maxRetries int) Option {
	return func(s *Service) {
		s.archive = publisher
		s.archivePrefix = prefix
		s.maxRetries = maxRetries
	}
}

// WithClock overrides the clock used for detection and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service reading from source. A non-positive
// windowDays selects signals.DefaultWindowDays.
func NewService(source ledger.Source, windowDays int, log zerolog.Logger, opts ...Option) *Service {
	if windowDays <= 0 {
		windowDays = signals.DefaultWindowDays
	}
	s := &Service{
		source:     source,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile is a user's snapshot together with the signals detected from it.
type Profile struct {
	Snapshot ledger.Snapshot
	Signals  signals.Bundle
}

// Load fetches the user's snapshot and detects signals from it.
func (s *Service) Load(ctx context.Context, userID string) (*Profile, error) {
	log := logger.WithUser(s.log, userID)

	snap, err := s.source.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	bundle := signals.DetectBehavioralSignalsAt(userID, snap.Transactions, snap.Accounts, snap.Liabilities, s.windowDays, s.now())

	log.Debug().
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.Transactions)).
		Int("liabilities", len(snap.Liabilities)).
		Msg("Signals detected")

	return &Profile{Snapshot: snap, Signals: bundle}, nil
}

// Signals returns the user's behavioral signals.
func (s *Service) Signals(ctx context.Context, userID string) (signals.Bundle, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return signals.Bundle{}, fmt.Errorf("Signals: %w", err)
	}
	return p.Signals, nil
}

// PersonaReport is a persona assignment and the signals it was made from.
type PersonaReport struct {
	UserID     string             `json:"user_id"`
	Assignment persona.Assignment `json:"assignment"`
	Signals    signals.Bundle     `json:"signals"`
}

// Persona classifies the user.
func (s *Service) Persona(ctx context.Context, userID string) (*PersonaReport, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Persona: %w", err)
	}

	assignment := persona.Assign(p.Signals)
	ulog := logger.WithUser(s.log, userID)
	ulog.Info().
		Str("persona", string(assignment.PrimaryPersona)).
		Int("matched", len(assignment.MatchedPersonas)).
		Msg("Persona assigned")

	return &PersonaReport{UserID: userID, Assignment: assignment, Signals: p.Signals}, nil
}

// Simulator builds a what-if simulator over the user's current state.
func (s *Service) Simulator(ctx context.Context, userID string) (*whatif.Simulator, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Simulator: %w", err)
	}
	return whatif.New(p.Signals, p.Snapshot.Accounts, p.Snapshot.Liabilities), nil
}

// RunScenario runs one scenario for the user.
func (s *Service) RunScenario(ctx context.Context, userID string, spec whatif.ScenarioSpec) (whatif.Result, error) {
	sim, err := s.Simulator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("RunScenario: %w", err)
	}

	res, err := sim.Run(spec)
	if err != nil {
		return nil, fmt.Errorf("RunScenario: %w", err)
	}

	ulog := logger.WithUser(s.log, userID)
	ulog.Info().Str("scenario_type", string(spec.Type)).Msg("Scenario simulated")
	return res, nil
}

// Compare runs two scenarios against the same snapshot and compares them.
func (s *Service) Compare(ctx context.Context, userID string, a, b whatif.ScenarioSpec) (*whatif.ComparisonResult, error) {
	sim, err := s.Simulator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Compare: %w", err)
	}

	resA, err := sim.Run(a)
	if err != nil {
		return nil, fmt.Errorf("Compare: scenario a: %w", err)
	}
	resB, err := sim.Run(b)
	if err != nil {
		return nil, fmt.Errorf("Compare: scenario b: %w", err)
	}

	cmp, err := whatif.Compare(resA, resB)
	if err != nil {
		return nil, fmt.Errorf("Compare: %w", err)
	}

	ulog := logger.WithUser(s.log, userID)
	ulog.Info().
		Str("scenario_a", string(a.Type)).
		Str("scenario_b", string(b.Type)).
		Str("better", cmp.BetterScenario).
		Msg("Scenarios compared")
	return cmp, nil
}
