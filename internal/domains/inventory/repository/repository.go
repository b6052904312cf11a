package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/inventory/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/logger"
	gRepo "lodge/shared/repository"
	"lodge/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Inventory interface {
	GetByProperty(ctx context.Context, propertyID string) ([]model.Entry, error)
	Replace(ctx context.Context, propertyID string, entries []model.Entry) error
	Upsert(ctx context.Context, entry model.Entry) error
	MarkUnavailableTx(ctx context.Context, tx *sqlx.Tx, propertyID string, dates []time.Time, user string) (int64, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Entry]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Inventory {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Entry](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) GetByProperty(ctx context.Context, propertyID string) ([]model.Entry, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".inventory.GetByProperty")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s = $1 ORDER BY %s ASC",
		model.TableName, model.FieldPropertyID, model.FieldDate,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var entries []model.Entry

	err := repo.db.Read.SelectContext(ctx, &entries, query, propertyID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get inventory (%s): %w", model.EntityName, err)
	}

	return entries, nil
}

// Replace swaps the property's whole inventory list in one transaction.
// Entries are expected to be deduplicated by day already; the unique
// constraint on (property_id, date) backs that up.
func (repo *repositoryImpl) Replace(ctx context.Context, propertyID string, entries []model.Entry) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".inventory.Replace")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", model.TableName, model.FieldPropertyID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, deleteQuery)

	if _, err = tx.ExecContext(ctx, deleteQuery, propertyID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to clear inventory (%s): %w", model.EntityName, err)
	}

	if len(entries) > 0 {
		if err = repo.InsertBulkTx(ctx, tx, entries); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit inventory replacement (%s): %w", model.EntityName, err)
	}

	return nil
}

// Upsert writes a single day's flag, keyed by (property_id, date). The
// conflict clause is what guarantees at most one entry per day at write time.
func (repo *repositoryImpl) Upsert(ctx context.Context, entry model.Entry) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".inventory.Upsert")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (:%s)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		model.TableName,
		strings.Join(repo.InsertColumns, ", "),
		strings.Join(repo.InsertColumns, ", :"),
		model.FieldPropertyID, model.FieldDate,
		model.FieldAvailable, model.FieldAvailable,
		constant.FieldModifiedAt, constant.FieldModifiedAt,
		constant.FieldModifiedBy, constant.FieldModifiedBy,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = repo.db.Write.NamedExecContext(ctx, query, entry); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to upsert inventory entry (%s): %w", model.EntityName, err)
	}

	return nil
}

// MarkUnavailableTx flips the given days to unavailable, but only the ones
// still available. The caller compares the affected row count against the
// number of requested nights: a shortfall means at least one night was
// already taken (or never opened) and the surrounding transaction must roll
// back. This single conditional update is what prevents two overlapping
// bookings from both succeeding.
func (repo *repositoryImpl) MarkUnavailableTx(ctx context.Context, tx *sqlx.Tx, propertyID string, dates []time.Time, user string) (affected int64, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".inventory.MarkUnavailableTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(dates) == 0 {
		return 0, nil
	}

	args := []any{propertyID, timezone.Now(), user}
	placeholders := make([]string, len(dates))

	for i, date := range dates {
		args = append(args, timezone.Day(date))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s = false, %s = $2, %s = $3 WHERE %s = $1 AND %s IN (%s) AND %s = true",
		model.TableName,
		model.FieldAvailable,
		constant.FieldModifiedAt,
		constant.FieldModifiedBy,
		model.FieldPropertyID,
		model.FieldDate,
		strings.Join(placeholders, ", "),
		model.FieldAvailable,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to mark inventory unavailable (%s): %w", model.EntityName, err)
	}

	affected, err = result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	return affected, nil
}
