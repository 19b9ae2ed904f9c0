package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	notificationModel "github.com/rateflow/rateflow/notification/internal/model"
	"github.com/rateflow/rateflow/pkg/events"
	"github.com/rateflow/rateflow/pkg/retry"
)

func init() {
	createBackoff = retry.Constant(0)
}

// fakeRepo emulates the store: unread rows ordered newest first, flipped to
// read once they are fetched.
type fakeRepo struct {
	rows      []notificationModel.Notification
	createErr error
	failures  int
	creates   int
}

func (f *fakeRepo) Create(_ context.Context, providerID uuid.UUID, message string) (notificationModel.Notification, error) {
	f.creates++
	if f.failures > 0 {
		f.failures--
		return notificationModel.Notification{}, errors.New("transient store failure")
	}
	if f.createErr != nil {
		return notificationModel.Notification{}, f.createErr
	}
	n := notificationModel.Notification{
		ID:                uuid.New(),
		ServiceProviderID: providerID,
		Message:           message,
		CreatedAt:         time.Now().UTC(),
	}
	f.rows = append(f.rows, n)
	return n, nil
}

func (f *fakeRepo) FetchAndMarkRead(_ context.Context, providerID uuid.UUID, page, pageSize int) ([]notificationModel.Notification, int, error) {
	var unread []notificationModel.Notification
	for _, n := range f.rows {
		if n.ServiceProviderID == providerID && !n.IsRead {
			unread = append(unread, n)
		}
	}
	sort.Slice(unread, func(i, j int) bool { return unread[i].CreatedAt.After(unread[j].CreatedAt) })

	total := len(unread)
	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	items := unread[offset:end]

	for _, item := range items {
		for i := range f.rows {
			if f.rows[i].ID == item.ID {
				f.rows[i].IsRead = true
			}
		}
	}
	return items, total, nil
}

func event(customerID uuid.UUID, score int, comment *string) events.RatingCreatedEvent {
	return events.RatingCreatedEvent{
		ID:                uuid.New(),
		ServiceProviderID: uuid.MustParse("83575e12-7ce0-48ee-9931-51919ff3c9ee"),
		CustomerID:        customerID,
		Score:             score,
		Comment:           comment,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestHandleRatingCreated_MessageMasksCustomerID(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	customerID := uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27")
	err := svc.HandleRatingCreated(context.Background(), event(customerID, 5, nil))
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	message := repo.rows[0].Message
	require.Equal(t, "New rating received from customer f7cdc58f.... Score: 5/5.", message)
	require.NotContains(t, message, customerID.String(), "full customer id must never appear")
}

func TestHandleRatingCreated_ShortCommentUnmodified(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	comment := strings.Repeat("x", 40)
	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 4, &comment))
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	require.Contains(t, repo.rows[0].Message, " Comment: "+comment)
	require.False(t, strings.HasSuffix(repo.rows[0].Message, "..."))
}

func TestHandleRatingCreated_LongCommentTruncated(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	comment := strings.Repeat("y", 100)
	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 3, &comment))
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	require.Contains(t, repo.rows[0].Message, " Comment: "+strings.Repeat("y", 50)+"...")
	require.NotContains(t, repo.rows[0].Message, strings.Repeat("y", 51))
}

func TestHandleRatingCreated_MultiByteCommentTruncatedOnRunes(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	comment := strings.Repeat("ж", 60)
	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 4, &comment))
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	message := repo.rows[0].Message
	require.True(t, utf8.ValidString(message))
	require.Contains(t, message, " Comment: "+strings.Repeat("ж", 50)+"...")
	require.NotContains(t, message, strings.Repeat("ж", 51))
}

func TestHandleRatingCreated_EmptyCommentOmitted(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	empty := ""
	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 1, &empty))
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	require.NotContains(t, repo.rows[0].Message, "Comment:")
}

func TestHandleRatingCreated_RetriesTransientFailure(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{failures: 1}
	svc := NewService(repo, zap.NewNop())

	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 2, nil))
	require.NoError(t, err)
	require.Equal(t, 2, repo.creates)
}

func TestHandleRatingCreated_ExhaustedRetriesPropagate(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{createErr: errors.New("store down")}
	svc := NewService(repo, zap.NewNop())

	err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), 2, nil))
	require.Error(t, err, "the consumer needs the failure to trigger requeue")
	require.Equal(t, createAttempts, repo.creates)
}

func TestGetNotifications_PagesDrainWithoutOverlap(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	providerID := uuid.MustParse("83575e12-7ce0-48ee-9931-51919ff3c9ee")
	for i := 0; i < 5; i++ {
		err := svc.HandleRatingCreated(context.Background(), event(uuid.New(), i%5+1, nil))
		require.NoError(t, err)
	}

	first, err := svc.GetNotifications(context.Background(), providerID, 1, 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.Equal(t, 5, first.TotalElements)
	require.Equal(t, 3, first.TotalPages)
	require.True(t, !first.Items[0].CreatedAt.Before(first.Items[1].CreatedAt), "newest first")

	second, err := svc.GetNotifications(context.Background(), providerID, 1, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	require.Equal(t, 3, second.TotalElements)
	for _, a := range first.Items {
		for _, b := range second.Items {
			require.NotEqual(t, a.ID, b.ID, "pages must not overlap")
		}
	}

	third, err := svc.GetNotifications(context.Background(), providerID, 1, 2)
	require.NoError(t, err)
	require.Len(t, third.Items, 1)

	drained, err := svc.GetNotifications(context.Background(), providerID, 1, 2)
	require.NoError(t, err)
	require.Empty(t, drained.Items)
	require.Zero(t, drained.TotalElements)
}

func TestGetNotifications_UnknownProviderIsEmptyNotError(t *testing.T) {
	t.Parallel()
	svc := NewService(&fakeRepo{}, zap.NewNop())

	res, err := svc.GetNotifications(context.Background(), uuid.New(), 1, 10)
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.Zero(t, res.TotalElements)
	require.Zero(t, res.TotalPages)
}
