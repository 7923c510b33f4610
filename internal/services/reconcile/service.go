package reconcile

import (
	"errors"
	"log/slog"

	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/model"
)

// Result is a parsed and reconciled extraction
type Result struct {
	GameMode    string
	WinningTeam *int
	Outcome
}

// Service parses and reconciles extraction payloads, logging and counting what was dropped
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a new reconcile Service
func New(logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		logger:  logger,
		metrics: m,
	}
}

// Process parses payload and reconciles it against roster.
// A non-nil winningTeam overrides the one declared in the payload.
func (s *Service) Process(payload []byte, roster []model.Player, winningTeam *int) (*Result, error) {
	extraction, err := ParseExtraction(payload)
	if err != nil {
		var me *MalformedExtractionError
		if errors.As(err, &me) {
			s.metrics.IncMalformed()
		}
		s.logger.Warn("could not parse extraction payload", slog.String("error", err.Error()))
		return nil, err
	}

	return s.Reconcile(extraction, roster, winningTeam), nil
}

// Reconcile reconciles an already-parsed extraction
func (s *Service) Reconcile(extraction *model.Extraction, roster []model.Player, winningTeam *int) *Result {
	if winningTeam == nil {
		winningTeam = extraction.WinningTeam
	}

	outcome := ReconcileDetailed(extraction, roster, winningTeam)

	for _, name := range outcome.Unmatched {
		s.logger.Debug("no roster match for extracted name", slog.String("name", name))
	}
	s.metrics.ObserveReconcile(len(outcome.Scores), len(outcome.Unmatched), len(outcome.Unread))
	s.logger.Info("reconciled extraction",
		slog.Int("matched", len(outcome.Scores)),
		slog.Int("unmatched", len(outcome.Unmatched)),
		slog.Int("unread", len(outcome.Unread)),
	)

	return &Result{
		GameMode:    extraction.GameMode,
		WinningTeam: winningTeam,
		Outcome:     outcome,
	}
}
