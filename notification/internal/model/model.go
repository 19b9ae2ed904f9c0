package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ServiceProviderID uuid.UUID `json:"serviceProviderId" db:"service_provider_id"`
	Message           string    `json:"message" db:"message"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	IsRead            bool      `json:"isRead" db:"is_read"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

type NotificationPage struct {
	Paging
	Items []Notification `json:"items"`
}
