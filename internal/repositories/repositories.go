package repositories

import (
	"database/sql"
	"fmt"
)

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence increments and returns the counter for table.
//
// The table must have a companion "<table>_sequence" table holding a single row with id 1.
// Run it on a *sql.Tx to roll the increment back together with the insert it numbers.
func NextSequence(q queryRower, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("sequence row missing for %s", table)
		}
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
