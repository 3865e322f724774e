package giftid

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger records issued identifiers for audit purposes. It is entirely
// optional and write-only from the generator's point of view: nothing
// in this package ever reads the ledger back to influence generation,
// so running without one (NoopLedger) changes no generation semantics.
// This keeps the "no persistence across restarts" non-goal intact —
// the ledger is an audit trail, not generator state.
type Ledger interface {
	// Record appends one issued identifier's metadata. Implementations
	// should treat Record as best-effort: a failure here must never
	// block or fail the HTTP request that already handed the ID to its
	// caller.
	Record(ctx context.Context, id ID, workshopID uint16, giftClass GiftClass) error

	// Close releases any resources the ledger holds.
	Close() error
}

// NoopLedger discards every record. It is the default.
type NoopLedger struct{}

// Record implements Ledger by doing nothing.
func (NoopLedger) Record(context.Context, ID, uint16, GiftClass) error { return nil }

// Close implements Ledger by doing nothing.
func (NoopLedger) Close() error { return nil }

// SQLiteLedger persists issued identifiers to a SQLite database via
// database/sql, writing the id column through the ID type's
// driver.Valuer implementation.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens dsn (e.g. "file:giftid.db" or ":memory:") and
// ensures the ledger table exists.
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("giftid: opening ledger database: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS gift_ledger (
	id INTEGER PRIMARY KEY,
	workshop_id INTEGER NOT NULL,
	gift_class TEXT NOT NULL,
	issued_at_ms INTEGER NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("giftid: creating ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Record implements Ledger, inserting one row per issued identifier.
// The ID's Value method supplies the int64 column value, exercising the
// driver.Valuer path directly.
func (l *SQLiteLedger) Record(ctx context.Context, id ID, workshopID uint16, giftClass GiftClass) error {
	components, err := id.Components()
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO gift_ledger (id, workshop_id, gift_class, issued_at_ms) VALUES (?, ?, ?, ?)`,
		id, workshopID, giftClass.String(), components.AbsoluteMillis())
	return err
}

// Close implements Ledger.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// CountByWorkshop returns how many identifiers this ledger has recorded
// for workshopID, mostly useful from tests and diagnostics.
func (l *SQLiteLedger) CountByWorkshop(ctx context.Context, workshopID uint16) (int64, error) {
	var count int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gift_ledger WHERE workshop_id = ?`, workshopID).Scan(&count)
	return count, err
}
