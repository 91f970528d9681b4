package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/calculator"
	"tripsplit/internal/domain"
	"tripsplit/internal/metrics"
)

type statsService struct {
	access         accessLoader
	statsRepo      domain.StatsRepository
	metrics        *metrics.Metrics
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewStatsService(tripRepo domain.TripRepository, participantRepo domain.ParticipantRepository, statsRepo domain.StatsRepository, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) domain.StatsService {
	return &statsService{
		access:         accessLoader{trips: tripRepo, participants: participantRepo},
		statsRepo:      statsRepo,
		metrics:        m,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *statsService) degrade(ctx context.Context, stats *domain.TripStats, field string, err error) {
	s.logger.WarnContext(ctx, "trip stats degraded", "field", field, "error", err)
	s.metrics.AggregationDegraded.WithLabelValues(field).Inc()
	stats.Degraded = append(stats.Degraded, field)
}

// TripStats runs each aggregate as its own query over the trips the user owns or has
// joined. A failing query zeroes only its own figure.
func (s *statsService) TripStats(ctx context.Context, userID string) *domain.TripStats {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats := &domain.TripStats{TotalExpenses: decimal.Zero}

	seen := make(map[string]struct{})
	var ids []string
	collect := func(list []string) {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	owned, ownedErr := s.statsRepo.ListOwnedTripIDs(ctx, userID)
	collect(owned)
	joined, joinedErr := s.statsRepo.ListParticipantTripIDs(ctx, userID)
	collect(joined)
	switch {
	case ownedErr != nil:
		s.degrade(ctx, stats, domain.StatTotalTrips, fmt.Errorf("list owned trips: %w", ownedErr))
	case joinedErr != nil:
		s.degrade(ctx, stats, domain.StatTotalTrips, fmt.Errorf("list joined trips: %w", joinedErr))
	}
	stats.TotalTrips = len(ids)
	if len(ids) == 0 {
		return stats
	}

	if n, err := s.statsRepo.CountTripsByStatus(ctx, ids, domain.TripStatusActive); err != nil {
		s.degrade(ctx, stats, domain.StatActiveTrips, err)
	} else {
		stats.ActiveTrips = n
	}
	if n, err := s.statsRepo.CountParticipants(ctx, ids); err != nil {
		s.degrade(ctx, stats, domain.StatTotalParticipants, err)
	} else {
		stats.TotalParticipants = n
	}
	if sum, err := s.statsRepo.SumExpenses(ctx, ids); err != nil {
		s.degrade(ctx, stats, domain.StatTotalExpenses, err)
	} else {
		stats.TotalExpenses = sum
	}
	return stats
}

func (s *statsService) TripSummary(ctx context.Context, tripID, userID string) (*domain.TripSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	trip, err := s.access.require(ctx, tripID, userID, domain.CapView)
	if err != nil {
		return nil, err
	}
	ids := []string{tripID}
	total, err := s.statsRepo.SumExpenses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	count, err := s.statsRepo.CountParticipants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	return &domain.TripSummary{
		TripID:           tripID,
		Currency:         trip.Currency,
		TotalExpenses:    total,
		ParticipantCount: count,
		PerPersonShare:   calculator.PerPersonShare(total, count),
	}, nil
}
