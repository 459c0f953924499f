package storage

import (
	"context"
	"fmt"
)

// CreateSnapshot writes a consistent copy of the database to destPath using
// VACUUM INTO. Safe to run while the database is in use; readers and
// writers proceed under WAL.
func (db *DB) CreateSnapshot(ctx context.Context, destPath string) error {
	if _, err := db.conn.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("vacuum into %q: %w", destPath, err)
	}
	return nil
}
