package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rateflow/rateflow/pkg/events"
	"github.com/rateflow/rateflow/pkg/retry"
	ratingModel "github.com/rateflow/rateflow/rating/internal/model"
	ratingRepo "github.com/rateflow/rateflow/rating/internal/repository"
)

const publishAttempts = 3

// overridden in tests to avoid real backoff delays
var publishBackoff = retry.Exponential(time.Second)

// EventPublisher hands a serialized event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, v any) error
}

type Service struct {
	log       *zap.Logger
	repo      ratingRepo.Repository
	publisher EventPublisher
}

func NewService(repo ratingRepo.Repository, publisher EventPublisher, log *zap.Logger) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		publisher: publisher,
	}
}

// CreateRating persists the rating, then publishes a RatingCreatedEvent with
// bounded retry. Rating persistence is authoritative; event delivery is
// advisory, so a publish failure is logged and swallowed and the caller still
// gets the stored rating.
func (s *Service) CreateRating(ctx context.Context, req ratingModel.CreateRatingRequest) (ratingModel.Rating, error) {
	rating, err := s.repo.CreateRating(ctx, ratingModel.Rating{
		ID:                uuid.New(),
		ServiceProviderID: req.ServiceProviderID,
		CustomerID:        req.CustomerID,
		Score:             req.Score,
		Comment:           req.Comment,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil {
		return ratingModel.Rating{}, err
	}

	event := events.RatingCreatedEvent{
		ID:                rating.ID,
		ServiceProviderID: rating.ServiceProviderID,
		CustomerID:        rating.CustomerID,
		Score:             rating.Score,
		Comment:           rating.Comment,
		CreatedAt:         rating.CreatedAt,
	}
	if err := retry.Do(ctx, publishAttempts, publishBackoff,
		func(ctx context.Context) error {
			return s.publisher.Publish(ctx, event)
		}); err != nil {
		s.log.Error("publish rating created event",
			zap.String("ratingId", rating.ID.String()),
			zap.Error(err))
	}

	return rating, nil
}

func (s *Service) GetProviderRating(ctx context.Context, providerID uuid.UUID) (ratingModel.ProviderRating, error) {
	return s.repo.GetProviderRating(ctx, providerID)
}
