package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockops/stock-console/internal/models"
)

const queryTimeout = 3 * time.Second

const journalSchema = `
CREATE TABLE IF NOT EXISTS movement_journal (
	id               INTEGER PRIMARY KEY,
	product_id       INTEGER NOT NULL,
	movement_type    TEXT NOT NULL,
	quantity         INTEGER NOT NULL,
	reference_number TEXT NOT NULL,
	ts               TIMESTAMPTZ NOT NULL,
	performed_by     INTEGER NOT NULL,
	notes            TEXT NOT NULL DEFAULT ''
)`

// PostgresJournalRepository persists the movement journal in postgres.
type PostgresJournalRepository struct {
	db *sql.DB
}

// NewPostgresJournalRepository creates the repository and ensures the journal
// table exists.
func NewPostgresJournalRepository(db *sql.DB) (*PostgresJournalRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure journal schema: %w", err)
	}
	return &PostgresJournalRepository{db: db}, nil
}

// Record appends a confirmed event. The event ID is the upstream server's;
// a conflict on it means the event was already journaled.
func (r *PostgresJournalRepository) Record(ev models.MovementEvent) error {
	query := `INSERT INTO movement_journal
		(id, product_id, movement_type, quantity, reference_number, ts, performed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.ProductID, string(ev.Type), ev.Quantity, ev.ReferenceNumber,
		ev.Timestamp, ev.PerformedBy, ev.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert journal event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

// ByProduct returns a product's journaled events, newest first.
func (r *PostgresJournalRepository) ByProduct(productID int, f JournalFilter) ([]models.MovementEvent, int, error) {
	whereClause, args := buildWhereClause(productID, f)

	total, err := r.getTotal(whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}
	if f.Offset != nil && *f.Offset >= total {
		return []models.MovementEvent{}, total, nil
	}

	query := fmt.Sprintf(`SELECT id, product_id, movement_type, quantity, reference_number, ts, performed_by, notes
		FROM movement_journal %s ORDER BY ts DESC`, whereClause)
	argIndex := len(args) + 1

	if f.Limit != nil && *f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *f.Limit)
		argIndex++
	}
	if f.Offset != nil && *f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *f.Offset)
	}

	events, err := r.executeQuery(query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute query: %w", err)
	}
	return events, total, nil
}

// Count returns the total number of journaled events.
func (r *PostgresJournalRepository) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movement_journal`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count journal events: %w", err)
	}
	return total, nil
}

// CountByProduct returns per-product event counts.
func (r *PostgresJournalRepository) CountByProduct() (map[int]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT product_id, COUNT(*) FROM movement_journal GROUP BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count journal events by product: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var productID, n int
		if err := rows.Scan(&productID, &n); err != nil {
			return nil, err
		}
		counts[productID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func buildWhereClause(productID int, f JournalFilter) (string, []any) {
	args := []any{productID}
	whereClause := "WHERE product_id = $1"
	argIndex := 2

	if f.Since != nil {
		whereClause += fmt.Sprintf(" AND ts >= $%d", argIndex)
		args = append(args, *f.Since)
		argIndex++
	}
	if f.Until != nil {
		whereClause += fmt.Sprintf(" AND ts <= $%d", argIndex)
		args = append(args, *f.Until)
	}

	return whereClause, args
}

func (r *PostgresJournalRepository) getTotal(whereClause string, args []any) (int, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM movement_journal %s", whereClause)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresJournalRepository) executeQuery(query string, args []any) ([]models.MovementEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.MovementEvent
	for rows.Next() {
		var ev models.MovementEvent
		var movementType string
		if err := rows.Scan(&ev.ID, &ev.ProductID, &movementType, &ev.Quantity,
			&ev.ReferenceNumber, &ev.Timestamp, &ev.PerformedBy, &ev.Notes); err != nil {
			return nil, err
		}
		ev.Type = models.MovementType(movementType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
