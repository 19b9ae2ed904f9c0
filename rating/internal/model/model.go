package model

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ServiceProviderID uuid.UUID `json:"serviceProviderId" db:"service_provider_id"`
	CustomerID        uuid.UUID `json:"customerId" db:"customer_id"`
	Score             int       `json:"score" db:"score"`
	Comment           *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

type CreateRatingRequest struct {
	ServiceProviderID uuid.UUID `json:"serviceProviderId" validate:"required"`
	CustomerID        uuid.UUID `json:"customerId" validate:"required"`
	Score             int       `json:"score" validate:"required,min=1,max=5"`
	Comment           *string   `json:"comment" validate:"omitempty,max=500"`
}

type ProviderRating struct {
	ServiceProviderID uuid.UUID `json:"serviceProviderId" db:"service_provider_id"`
	AverageScore      float64   `json:"averageScore" db:"avg_score"`
	RatingCount       int       `json:"ratingCount" db:"rating_count"`
}
