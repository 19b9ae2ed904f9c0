package handler

import (
	"context"

	"github.com/google/uuid"

	ratingModel "github.com/rateflow/rateflow/rating/internal/model"
	"github.com/rateflow/rateflow/rating/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type RatingService interface {
	CreateRating(ctx context.Context, req ratingModel.CreateRatingRequest) (ratingModel.Rating, error)
	GetProviderRating(ctx context.Context, providerID uuid.UUID) (ratingModel.ProviderRating, error)
}

var _ RatingService = (*service.Service)(nil)
