package handler

import (
	"context"

	"github.com/google/uuid"

	notificationModel "github.com/rateflow/rateflow/notification/internal/model"
	"github.com/rateflow/rateflow/notification/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type NotificationService interface {
	GetNotifications(ctx context.Context, providerID uuid.UUID, page, pageSize int) (notificationModel.NotificationPage, error)
}

var _ NotificationService = (*service.Service)(nil)
