package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signals-service/internal/domain"
)

// ErrImageExists signals that an image upload was attempted on a
// signal that already carries one.
var ErrImageExists = errors.New("signal already has an image")

// SignalRepository encapsulates the signal aggregate. The Apply*
// methods serialize concurrent mutations of one signal: each runs in a
// transaction that locks the owning signal row, re-reads the current
// child row, lets the caller decide, appends the new history row and
// moves the current pointer. Readers therefore never observe a signal
// without a current child, and two conflicting transitions cannot both
// succeed.
type SignalRepository interface {
	Create(ctx context.Context, signal *domain.Signal) error
	GetByID(ctx context.Context, id int64) (*domain.Signal, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.Signal, error)
	List(ctx context.Context, limit, offset int) ([]domain.Signal, int, error)
	SetImage(ctx context.Context, publicID, image string) error

	ApplyStatus(ctx context.Context, signalID int64, decide func(current *domain.Status) (*domain.Status, error)) (*domain.Status, error)
	ApplyCategoryAssignment(ctx context.Context, signalID int64, decide func(current *domain.CategoryAssignment) (*domain.CategoryAssignment, error)) (*domain.CategoryAssignment, error)
	ApplyPriority(ctx context.Context, signalID int64, decide func(current *domain.Priority) (*domain.Priority, error)) (*domain.Priority, error)
	ApplyLocation(ctx context.Context, signalID int64, decide func(current *domain.Location) (*domain.Location, error)) (*domain.Location, error)
}

type signalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository instantiates the repository.
func NewSignalRepository(pool *pgxpool.Pool) SignalRepository {
	return &signalRepository{pool: pool}
}

// Create inserts the signal and all of its initial child rows in one
// transaction, then points the signal at them. Either everything
// becomes visible or nothing does.
func (r *signalRepository) Create(ctx context.Context, signal *domain.Signal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertSignal = `
        INSERT INTO signals (signal_id, source, text, text_extra, image, incident_date_start, incident_date_end, operational_date, extra_properties)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertSignal,
		signal.SignalID,
		signal.Source,
		signal.Text,
		signal.TextExtra,
		signal.Image,
		signal.IncidentDateStart,
		signal.IncidentDateEnd,
		signal.OperationalDate,
		signal.ExtraProperties,
	).Scan(&signal.ID, &signal.CreatedAt, &signal.UpdatedAt); err != nil {
		return err
	}

	if signal.Status != nil {
		signal.Status.SignalID = signal.ID
		if err := insertStatus(ctx, tx, signal.Status); err != nil {
			return err
		}
	}
	if signal.CategoryAssignment != nil {
		signal.CategoryAssignment.SignalID = signal.ID
		if err := insertCategoryAssignment(ctx, tx, signal.CategoryAssignment); err != nil {
			return err
		}
	}
	if signal.Priority != nil {
		signal.Priority.SignalID = signal.ID
		if err := insertPriority(ctx, tx, signal.Priority); err != nil {
			return err
		}
	}
	if signal.Location != nil {
		signal.Location.SignalID = signal.ID
		if err := insertLocation(ctx, tx, signal.Location); err != nil {
			return err
		}
	}
	if signal.Reporter != nil {
		signal.Reporter.SignalID = signal.ID
		const insertReporter = `
            INSERT INTO reporters (signal_id, email, phone, remove_at, extra_properties)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insertReporter,
			signal.Reporter.SignalID,
			signal.Reporter.Email,
			signal.Reporter.Phone,
			signal.Reporter.RemoveAt,
			signal.Reporter.ExtraProperties,
		).Scan(&signal.Reporter.ID, &signal.Reporter.CreatedAt); err != nil {
			return err
		}
	}

	if err := updateCurrentPointers(ctx, tx, signal); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *signalRepository) GetByID(ctx context.Context, id int64) (*domain.Signal, error) {
	const query = `
        SELECT id, signal_id, source, text, text_extra, image, incident_date_start, incident_date_end,
               operational_date, extra_properties, status_id, category_assignment_id, priority_id,
               location_id, reporter_id, created_at, updated_at
        FROM signals WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *signalRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Signal, error) {
	const query = `
        SELECT id, signal_id, source, text, text_extra, image, incident_date_start, incident_date_end,
               operational_date, extra_properties, status_id, category_assignment_id, priority_id,
               location_id, reporter_id, created_at, updated_at
        FROM signals WHERE signal_id=$1`
	return r.fetchSingle(ctx, query, publicID)
}

func (r *signalRepository) List(ctx context.Context, limit, offset int) ([]domain.Signal, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM signals`).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, signal_id, source, text, text_extra, image, incident_date_start, incident_date_end,
               operational_date, extra_properties, status_id, category_assignment_id, priority_id,
               location_id, reporter_id, created_at, updated_at
        FROM signals ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Signal
	for rows.Next() {
		signal, ids, err := scanSignal(rows)
		if err != nil {
			return nil, 0, err
		}
		if err := r.loadChildren(ctx, signal, ids); err != nil {
			return nil, 0, err
		}
		result = append(result, *signal)
	}
	return result, count, rows.Err()
}

// SetImage attaches an image exactly once; a second attempt fails with
// ErrImageExists.
func (r *signalRepository) SetImage(ctx context.Context, publicID, image string) error {
	const query = `
        UPDATE signals SET image=$1, updated_at=NOW()
        WHERE signal_id=$2 AND image=''`
	cmd, err := r.pool.Exec(ctx, query, image, publicID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByPublicID(ctx, publicID); err != nil {
			return err
		}
		return ErrImageExists
	}
	return nil
}

func (r *signalRepository) ApplyStatus(ctx context.Context, signalID int64, decide func(current *domain.Status) (*domain.Status, error)) (*domain.Status, error) {
	var applied *domain.Status
	err := r.applyLocked(ctx, signalID, func(tx pgx.Tx, ids childIDs) error {
		current, err := fetchStatus(ctx, tx, ids.statusID)
		if err != nil {
			return err
		}
		next, err := decide(current)
		if err != nil {
			return err
		}
		next.SignalID = signalID
		if err := insertStatus(ctx, tx, next); err != nil {
			return err
		}
		applied = next
		_, err = tx.Exec(ctx, `UPDATE signals SET status_id=$1, updated_at=NOW() WHERE id=$2`, next.ID, signalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *signalRepository) ApplyCategoryAssignment(ctx context.Context, signalID int64, decide func(current *domain.CategoryAssignment) (*domain.CategoryAssignment, error)) (*domain.CategoryAssignment, error) {
	var applied *domain.CategoryAssignment
	err := r.applyLocked(ctx, signalID, func(tx pgx.Tx, ids childIDs) error {
		current, err := fetchCategoryAssignment(ctx, tx, ids.categoryAssignmentID)
		if err != nil {
			return err
		}
		next, err := decide(current)
		if err != nil {
			return err
		}
		next.SignalID = signalID
		if err := insertCategoryAssignment(ctx, tx, next); err != nil {
			return err
		}
		applied = next
		_, err = tx.Exec(ctx, `UPDATE signals SET category_assignment_id=$1, updated_at=NOW() WHERE id=$2`, next.ID, signalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *signalRepository) ApplyPriority(ctx context.Context, signalID int64, decide func(current *domain.Priority) (*domain.Priority, error)) (*domain.Priority, error) {
	var applied *domain.Priority
	err := r.applyLocked(ctx, signalID, func(tx pgx.Tx, ids childIDs) error {
		current, err := fetchPriority(ctx, tx, ids.priorityID)
		if err != nil {
			return err
		}
		next, err := decide(current)
		if err != nil {
			return err
		}
		next.SignalID = signalID
		if err := insertPriority(ctx, tx, next); err != nil {
			return err
		}
		applied = next
		_, err = tx.Exec(ctx, `UPDATE signals SET priority_id=$1, updated_at=NOW() WHERE id=$2`, next.ID, signalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *signalRepository) ApplyLocation(ctx context.Context, signalID int64, decide func(current *domain.Location) (*domain.Location, error)) (*domain.Location, error) {
	var applied *domain.Location
	err := r.applyLocked(ctx, signalID, func(tx pgx.Tx, ids childIDs) error {
		current, err := fetchLocation(ctx, tx, ids.locationID)
		if err != nil {
			return err
		}
		next, err := decide(current)
		if err != nil {
			return err
		}
		next.SignalID = signalID
		if err := insertLocation(ctx, tx, next); err != nil {
			return err
		}
		applied = next
		_, err = tx.Exec(ctx, `UPDATE signals SET location_id=$1, updated_at=NOW() WHERE id=$2`, next.ID, signalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

type childIDs struct {
	statusID             *int64
	categoryAssignmentID *int64
	priorityID           *int64
	locationID           *int64
	reporterID           *int64
}

// applyLocked takes the per-signal row lock and runs fn inside the
// transaction. The allowed-transition check in fn is thereby evaluated
// against a consistent current-state snapshot.
func (r *signalRepository) applyLocked(ctx context.Context, signalID int64, fn func(tx pgx.Tx, ids childIDs) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var ids childIDs
	const lockQuery = `
        SELECT status_id, category_assignment_id, priority_id, location_id, reporter_id
        FROM signals WHERE id=$1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, signalID).Scan(
		&ids.statusID,
		&ids.categoryAssignmentID,
		&ids.priorityID,
		&ids.locationID,
		&ids.reporterID,
	); err != nil {
		return err
	}

	if err := fn(tx, ids); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *signalRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Signal, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	signal, ids, err := scanSignalRow(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, signal, ids); err != nil {
		return nil, err
	}
	return signal, nil
}

func scanSignal(rows pgx.Rows) (*domain.Signal, childIDs, error) {
	return scanSignalRow(rows)
}

func scanSignalRow(row pgx.Row) (*domain.Signal, childIDs, error) {
	var signal domain.Signal
	var ids childIDs
	if err := row.Scan(
		&signal.ID,
		&signal.SignalID,
		&signal.Source,
		&signal.Text,
		&signal.TextExtra,
		&signal.Image,
		&signal.IncidentDateStart,
		&signal.IncidentDateEnd,
		&signal.OperationalDate,
		&signal.ExtraProperties,
		&ids.statusID,
		&ids.categoryAssignmentID,
		&ids.priorityID,
		&ids.locationID,
		&ids.reporterID,
		&signal.CreatedAt,
		&signal.UpdatedAt,
	); err != nil {
		return nil, childIDs{}, err
	}
	return &signal, ids, nil
}

func (r *signalRepository) loadChildren(ctx context.Context, signal *domain.Signal, ids childIDs) error {
	var err error
	if signal.Status, err = fetchStatus(ctx, r.pool, ids.statusID); err != nil {
		return err
	}
	if signal.CategoryAssignment, err = fetchCategoryAssignment(ctx, r.pool, ids.categoryAssignmentID); err != nil {
		return err
	}
	if signal.Priority, err = fetchPriority(ctx, r.pool, ids.priorityID); err != nil {
		return err
	}
	if signal.Location, err = fetchLocation(ctx, r.pool, ids.locationID); err != nil {
		return err
	}
	if signal.Reporter, err = fetchReporter(ctx, r.pool, ids.reporterID); err != nil {
		return err
	}
	return nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx; the child
// fetch/insert helpers run against either.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func updateCurrentPointers(ctx context.Context, tx pgx.Tx, signal *domain.Signal) error {
	var statusID, assignmentID, priorityID, locationID, reporterID *int64
	if signal.Status != nil {
		statusID = &signal.Status.ID
	}
	if signal.CategoryAssignment != nil {
		assignmentID = &signal.CategoryAssignment.ID
	}
	if signal.Priority != nil {
		priorityID = &signal.Priority.ID
	}
	if signal.Location != nil {
		locationID = &signal.Location.ID
	}
	if signal.Reporter != nil {
		reporterID = &signal.Reporter.ID
	}
	_, err := tx.Exec(ctx, `
        UPDATE signals SET status_id=$1, category_assignment_id=$2, priority_id=$3, location_id=$4, reporter_id=$5
        WHERE id=$6`,
		statusID, assignmentID, priorityID, locationID, reporterID, signal.ID)
	return err
}
