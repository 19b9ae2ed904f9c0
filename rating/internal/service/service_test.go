package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rateflow/rateflow/pkg/events"
	"github.com/rateflow/rateflow/pkg/retry"
	ratingModel "github.com/rateflow/rateflow/rating/internal/model"
)

func init() {
	publishBackoff = retry.Constant(0)
}

type fakeRepo struct {
	created []ratingModel.Rating
	err     error
}

func (f *fakeRepo) CreateRating(_ context.Context, rating ratingModel.Rating) (ratingModel.Rating, error) {
	if f.err != nil {
		return ratingModel.Rating{}, f.err
	}
	f.created = append(f.created, rating)
	return rating, nil
}

func (f *fakeRepo) GetProviderRating(context.Context, uuid.UUID) (ratingModel.ProviderRating, error) {
	return ratingModel.ProviderRating{}, nil
}

type fakePublisher struct {
	published []events.RatingCreatedEvent
	failures  int
}

func (f *fakePublisher) Publish(_ context.Context, v any) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("broker down")
	}
	f.published = append(f.published, v.(events.RatingCreatedEvent))
	return nil
}

func req(score int, comment *string) ratingModel.CreateRatingRequest {
	return ratingModel.CreateRatingRequest{
		ServiceProviderID: uuid.MustParse("83575e12-7ce0-48ee-9931-51919ff3c9ee"),
		CustomerID:        uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27"),
		Score:             score,
		Comment:           comment,
	}
}

func TestCreateRating_PublishesEvent(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	svc := NewService(repo, pub, zap.NewNop())

	comment := "Excellent!"
	rating, err := svc.CreateRating(context.Background(), req(5, &comment))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, rating.ID)
	require.Equal(t, 5, rating.Score)

	require.Len(t, pub.published, 1)
	event := pub.published[0]
	require.Equal(t, rating.ID, event.ID)
	require.Equal(t, uuid.MustParse("83575e12-7ce0-48ee-9931-51919ff3c9ee"), event.ServiceProviderID)
	require.Equal(t, uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27"), event.CustomerID)
	require.Equal(t, 5, event.Score)
	require.NotNil(t, event.Comment)
	require.Equal(t, "Excellent!", *event.Comment)
}

func TestCreateRating_RetriesTransientPublishFailure(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	pub := &fakePublisher{failures: 1}
	svc := NewService(repo, pub, zap.NewNop())

	_, err := svc.CreateRating(context.Background(), req(4, nil))
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
}

func TestCreateRating_PublishFailureDoesNotFailRating(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{}
	pub := &fakePublisher{failures: publishAttempts}
	svc := NewService(repo, pub, zap.NewNop())

	rating, err := svc.CreateRating(context.Background(), req(3, nil))
	require.NoError(t, err, "rating persistence is authoritative, event delivery is advisory")
	require.NotEqual(t, uuid.Nil, rating.ID)
	require.Len(t, repo.created, 1)
	require.Empty(t, pub.published)
}

func TestCreateRating_RepoFailureSkipsPublish(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{err: errors.New("db down")}
	pub := &fakePublisher{}
	svc := NewService(repo, pub, zap.NewNop())

	_, err := svc.CreateRating(context.Background(), req(2, nil))
	require.Error(t, err)
	require.Empty(t, pub.published)
}
