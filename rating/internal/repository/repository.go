package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rateflow/rateflow/rating/internal/errs"
	ratingModel "github.com/rateflow/rateflow/rating/internal/model"
)

type Repository interface {
	CreateRating(ctx context.Context, rating ratingModel.Rating) (ratingModel.Rating, error)
	GetProviderRating(ctx context.Context, providerID uuid.UUID) (ratingModel.ProviderRating, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	ratingTableName = `rating`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) CreateRating(ctx context.Context, rating ratingModel.Rating) (ratingModel.Rating, error) {
	q, args, err := qb.Insert(ratingTableName).
		Columns("id", "service_provider_id", "customer_id", "score", "comment", "created_at").
		Values(rating.ID, rating.ServiceProviderID, rating.CustomerID, rating.Score, rating.Comment, rating.CreatedAt).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return ratingModel.Rating{}, err
	}
	var res ratingModel.Rating
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return ratingModel.Rating{}, errs.ErrInvalidScore
		}
		r.log.Error("CreateRating", zap.String("q", q), zap.Any("args", args))
		return ratingModel.Rating{}, err
	}
	return res, nil
}

func (r *repository) GetProviderRating(ctx context.Context, providerID uuid.UUID) (ratingModel.ProviderRating, error) {
	q, args, err := qb.Select(
		"coalesce(avg(score), 0) as avg_score",
		"count(*) as rating_count").
		From(ratingTableName).
		Where(sq.Eq{"service_provider_id": providerID}).
		ToSql()
	if err != nil {
		return ratingModel.ProviderRating{}, err
	}

	res := ratingModel.ProviderRating{ServiceProviderID: providerID}
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&res.AverageScore, &res.RatingCount); err != nil {
		return ratingModel.ProviderRating{}, err
	}
	return res, nil
}
