package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	notificationModel "github.com/rateflow/rateflow/notification/internal/model"
)

type Repository interface {
	Create(ctx context.Context, providerID uuid.UUID, message string) (notificationModel.Notification, error)
	FetchAndMarkRead(ctx context.Context, providerID uuid.UUID, page, pageSize int) ([]notificationModel.Notification, int, error)
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
	notificationTableName = `notification`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) Create(ctx context.Context, providerID uuid.UUID, message string) (notificationModel.Notification, error) {
	q, args, err := qb.Insert(notificationTableName).
		Columns("id", "service_provider_id", "message", "created_at", "is_read").
		Values(uuid.New(), providerID, message, time.Now().UTC(), false).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return notificationModel.Notification{}, err
	}
	var res notificationModel.Notification
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		r.log.Error("Create", zap.String("q", q), zap.Any("args", args))
		return notificationModel.Notification{}, err
	}
	return res, nil
}

// FetchAndMarkRead returns the requested page of unread notifications (newest
// first) together with the total unread count, and flips is_read for exactly
// the returned rows. Count, select and update run in one transaction so a
// page is delivered to at most one caller.
func (r *repository) FetchAndMarkRead(ctx context.Context, providerID uuid.UUID, page, pageSize int) ([]notificationModel.Notification, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	unread := sq.Eq{"service_provider_id": providerID, "is_read": false}

	q, args, err := qb.Select("count(*)").
		From(notificationTableName).
		Where(unread).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q, args, err = qb.Select("id", "service_provider_id", "message", "created_at", "is_read").
		From(notificationTableName).
		Where(unread).
		OrderBy("created_at desc").
		Offset(uint64((page - 1) * pageSize)).
		Limit(uint64(pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	items := make([]notificationModel.Notification, 0, pageSize)
	if err := tx.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, 0, err
	}

	if len(items) > 0 {
		ids := make([]uuid.UUID, 0, len(items))
		for _, n := range items {
			ids = append(ids, n.ID)
		}
		q, args, err = qb.Update(notificationTableName).
			Set("is_read", true).
			Where(sq.Eq{"id": ids}).
			ToSql()
		if err != nil {
			return nil, 0, err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, 0, errors.Wrap(err, "mark read")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, errors.Wrap(err, "commit")
	}
	return items, total, nil
}
