package saga

import (
	"context"
	"errors"
	"fmt"

	"procurement/internal/repository"
	custom_error "procurement/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type JournalRepository struct {
	repository *repository.Repository
}

func NewJournalRepository(r *repository.Repository) *JournalRepository {
	return &JournalRepository{repository: r}
}

func (r *JournalRepository) Record(ctx context.Context, entry Entry) error {
	record := goqu.Record{
		"saga_id": entry.SagaID,
		"saga":    entry.Saga,
		"step":    entry.Step,
		"status":  entry.Status,
	}
	if entry.Error != "" {
		record["error"] = entry.Error
	}

	_, err := r.repository.GoquDBWrapper.Insert("saga_journal").Rows(record).Executor().ExecContext(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError(pqErr.Message, string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert saga journal entry: %w", err)
	}

	return nil
}

// Entries returns the journal of one saga in insertion order.
func (r *JournalRepository) Entries(ctx context.Context, sagaID string) ([]Entry, error) {
	query := r.repository.GoquDBWrapper.
		From("saga_journal").
		Select("saga_id", "saga", "step", "status", goqu.COALESCE(goqu.C("error"), "").As("error")).
		Where(goqu.Ex{"saga_id": sagaID}).
		Order(goqu.C("id").Asc())

	rows, err := query.Executor().QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SagaID, &e.Saga, &e.Step, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan saga journal entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
