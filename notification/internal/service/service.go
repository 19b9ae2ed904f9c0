package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	notificationModel "github.com/rateflow/rateflow/notification/internal/model"
	notificationRepo "github.com/rateflow/rateflow/notification/internal/repository"
	"github.com/rateflow/rateflow/pkg/events"
	"github.com/rateflow/rateflow/pkg/retry"
)

const (
	createAttempts = 3

	maskedIDLength   = 8
	maxCommentLength = 50
	ellipsis         = "..."

	DefaultPage     = 1
	DefaultPageSize = 10
)

// overridden in tests to avoid real backoff delays
var createBackoff = retry.Exponential(time.Second)

type Service struct {
	log  *zap.Logger
	repo notificationRepo.Repository
}

func NewService(repo notificationRepo.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// HandleRatingCreated derives a notification from the event and persists it
// with bounded retry. An exhausted retry propagates to the consumer, which
// rejects the delivery with requeue.
func (s *Service) HandleRatingCreated(ctx context.Context, event events.RatingCreatedEvent) error {
	message := buildMessage(event)

	return retry.Do(ctx, createAttempts, createBackoff,
		func(ctx context.Context) error {
			notification, err := s.repo.Create(ctx, event.ServiceProviderID, message)
			if err != nil {
				return err
			}
			s.log.Info("notification created",
				zap.String("notificationId", notification.ID.String()),
				zap.String("serviceProviderId", event.ServiceProviderID.String()))
			return nil
		})
}

// buildMessage renders the human-readable notification text. The customer id
// is masked to its first characters as a privacy affordance, and long comments
// are truncated.
func buildMessage(event events.RatingCreatedEvent) string {
	message := fmt.Sprintf("New rating received from customer %s. Score: %d/5.",
		maskCustomerID(event.CustomerID), event.Score)
	if event.Comment != nil && *event.Comment != "" {
		message += " Comment: " + truncateComment(*event.Comment)
	}
	return message
}

func maskCustomerID(id uuid.UUID) string {
	return id.String()[:maskedIDLength] + ellipsis
}

// truncateComment caps the comment at maxCommentLength characters, counting
// runes so a multi-byte comment is never cut mid-rune.
func truncateComment(comment string) string {
	runes := []rune(comment)
	if len(runes) <= maxCommentLength {
		return comment
	}
	return string(runes[:maxCommentLength]) + ellipsis
}

// GetNotifications implements the read-marks-as-read contract: the returned
// page is flipped to read before the response leaves the service, so a
// notification is visible to at most one successful call. An empty page is a
// normal outcome, never an error.
func (s *Service) GetNotifications(ctx context.Context, providerID uuid.UUID, page, pageSize int) (notificationModel.NotificationPage, error) {
	items, total, err := s.repo.FetchAndMarkRead(ctx, providerID, page, pageSize)
	if err != nil {
		return notificationModel.NotificationPage{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return notificationModel.NotificationPage{
		Paging: notificationModel.Paging{
			Page:          page,
			PageSize:      pageSize,
			TotalElements: total,
			TotalPages:    totalPages,
		},
		Items: items,
	}, nil
}
