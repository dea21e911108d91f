package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	portsrepo "github.com/mhgaber/dukan_pos_backend/internal/core/ports/repositories"
)

type PgxNumberingRepository struct{}

// newPgxNumberingRepository creates the document sequence repository. It is
// stateless; every mint runs inside the caller's transaction.
func newPgxNumberingRepository() portsrepo.NumberingRepository {
	return &PgxNumberingRepository{}
}

var _ portsrepo.NumberingRepository = (*PgxNumberingRepository)(nil)

// NextNumberInTx mints the next integer of the named sequence. The upsert
// takes a row lock, so two concurrent units of work against the same scope
// serialize here and numbers within a scope stay gapless per commit order.
// An aborted transaction returns its number to the sequence with the rollback.
func (r *PgxNumberingRepository) NextNumberInTx(ctx context.Context, tx pgx.Tx, scope string) (int64, error) {
	query := `
		INSERT INTO document_sequences (scope, current_value)
		VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET current_value = document_sequences.current_value + 1
		RETURNING current_value;
	`
	var value int64
	if err := tx.QueryRow(ctx, query, scope).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to mint number for scope %s: %w", scope, err)
	}
	return value, nil
}
