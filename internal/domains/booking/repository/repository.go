package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"portal/infras/otel"
	"portal/infras/postgres"
	availabilityModel "portal/internal/domains/availability/model"
	"portal/internal/domains/booking/model"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/logger"
	gRepo "portal/shared/repository"
)

// ErrNoRoomsAvailable signals that the reservation lost the race for the
// last free room.
var ErrNoRoomsAvailable = errors.New("no rooms available")

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	InsertWithReservation(ctx context.Context, booking model.Booking) error
	UpdateWithRestore(ctx context.Context, req map[string]any, bookingID string, availabilityID *string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// InsertWithReservation creates the booking and takes one room off the
// ledger in a single transaction. The guarded decrement makes oversell
// impossible even under concurrent submissions.
func (repo *repositoryImpl) InsertWithReservation(ctx context.Context, booking model.Booking) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertWithReservation")
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

	reserveQuery := fmt.Sprintf(
		"UPDATE %s SET %s = %s - 1 WHERE %s = $1 AND %s > 0",
		availabilityModel.TableName,
		availabilityModel.FieldAvailableRooms, availabilityModel.FieldAvailableRooms,
		availabilityModel.FieldID,
		availabilityModel.FieldAvailableRooms,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, reserveQuery)

	result, err := tx.ExecContext(ctx, reserveQuery, booking.AvailabilityID)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to reserve room (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to reserve room (%s): %w", model.EntityName, err)
	}

	if affected == 0 {
		err = ErrNoRoomsAvailable

		return err
	}

	if err = repo.InsertTx(ctx, tx, booking); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}

// UpdateWithRestore applies the booking update and returns the reserved room
// to the ledger in the same transaction. The free count never exceeds the
// total. A nil availability id means the ledger row was deleted after the
// stay resolved; the update then runs alone.
func (repo *repositoryImpl) UpdateWithRestore(ctx context.Context, req map[string]any, bookingID string, availabilityID *string) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateWithRestore")
	defer scope.End()
	defer scope.TraceIfError(err)

	if availabilityID == nil {
		return repo.Update(ctx, req, shared.FilterByID(bookingID, model.FieldID, model.TableName))
	}

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

	if err = repo.UpdateTx(ctx, tx, req, shared.FilterByID(bookingID, model.FieldID, model.TableName)); err != nil {
		return err
	}

	restoreQuery := fmt.Sprintf(
		"UPDATE %s SET %s = LEAST(%s, %s + 1) WHERE %s = $1",
		availabilityModel.TableName,
		availabilityModel.FieldAvailableRooms,
		availabilityModel.FieldTotalRooms, availabilityModel.FieldAvailableRooms,
		availabilityModel.FieldID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, restoreQuery)

	if _, err = tx.ExecContext(ctx, restoreQuery, *availabilityID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to restore room (%s): %w", model.EntityName, err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}
