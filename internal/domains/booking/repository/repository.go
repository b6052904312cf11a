package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/booking/model"
	inventoryRepo "lodge/internal/domains/inventory/repository"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/logger"
	gRepo "lodge/shared/repository"

	"github.com/pkg/errors"
)

// ErrNightsUnavailable means the conditional inventory update claimed fewer
// nights than the stay needs; the booking transaction was rolled back.
var ErrNightsUnavailable = errors.New("one or more nights are no longer available")

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	CreateConfirmed(ctx context.Context, booking model.Booking, nights []time.Time, user string) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db        *postgres.Connection
	otel      otel.Otel
	inventory inventoryRepo.Inventory
}

func New(db *postgres.Connection, otel otel.Otel, inventory inventoryRepo.Inventory) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
		inventory:  inventory,
	}
}

// CreateConfirmed books the stay atomically: it flips the stay's nights to
// unavailable with a conditional update and inserts the booking row in the
// same transaction. If the update claims fewer rows than nights requested,
// another booking (or a provider closing days) got there first; everything
// rolls back and ErrNightsUnavailable comes back so the caller can re-read
// inventory and report the exact conflicting dates.
func (repo *repositoryImpl) CreateConfirmed(ctx context.Context, booking model.Booking, nights []time.Time, user string) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CreateConfirmed")
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

	affected, err := repo.inventory.MarkUnavailableTx(ctx, tx, booking.PropertyID, nights, user)
	if err != nil {
		return err
	}

	if affected != int64(len(nights)) {
		err = ErrNightsUnavailable

		return err
	}

	if err = repo.InsertTx(ctx, tx, booking); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit booking (%s): %w", model.EntityName, err)
	}

	return nil
}
