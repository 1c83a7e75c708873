package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

// ExistsQuery carries the duplicate-lookup predicate. Every supplied field
// matches with exact equality; InvoiceNumber participates only when present
// and not the Unknown sentinel.
type ExistsQuery struct {
	Merchant      string
	Date          string
	Total         float64
	InvoiceNumber string
}

// ReceiptRepository is the store contract the engine consumes.
type ReceiptRepository interface {
	Exists(ctx context.Context, q ExistsQuery) (bool, int, error)
	Insert(ctx context.Context, rec entity.CanonicalReceipt, sourceFilename string) (uuid.UUID, error)
	InsertLineItems(ctx context.Context, receiptID uuid.UUID, items []entity.LineItem) error
	FetchLineItems(ctx context.Context, receiptID uuid.UUID) ([]entity.LineItem, error)
	FetchMetadata(ctx context.Context, receiptID uuid.UUID) (total, tax float64, err error)
	List(ctx context.Context) ([]entity.StoredReceipt, error)
	Delete(ctx context.Context, receiptID uuid.UUID) error
	Clear(ctx context.Context) (int64, error)
}

type receiptRepository struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// NewReceiptRepository builds the SQL-backed store. driver selects the
// placeholder dialect ("pgx" rebinds ? to $N).
func NewReceiptRepository(db *sql.DB, driver string, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, driver: driver, logger: logger}
}

// rebind rewrites ?-placeholders to $N for postgres.
func (r *receiptRepository) rebind(query string) string {
	if r.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *receiptRepository) Exists(ctx context.Context, q ExistsQuery) (bool, int, error) {
	query := `SELECT COUNT(*) FROM receipts WHERE merchant = ? AND receipt_date = ? AND total = ?`
	args := []any{q.Merchant, q.Date, q.Total}
	if q.InvoiceNumber != "" && q.InvoiceNumber != entity.Unknown {
		query += ` AND invoice_number = ?`
		args = append(args, q.InvoiceNumber)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("duplicate lookup: %w", err)
	}
	return count > 0, count, nil
}

func (r *receiptRepository) Insert(ctx context.Context, rec entity.CanonicalReceipt, sourceFilename string) (uuid.UUID, error) {
	id := uuid.New()
	query := r.rebind(`INSERT INTO receipts
		(id, merchant, receipt_date, invoice_number, subtotal, tax, total, source_filename, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		id.String(), rec.Merchant, rec.Date, rec.InvoiceNumber,
		rec.Subtotal, rec.Tax, rec.Total, sourceFilename,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting receipt: %w", err)
	}

	r.logger.Info("store.insert.ok", "receipt_id", id, "merchant", rec.Merchant, "total", rec.Total)
	return id, nil
}

func (r *receiptRepository) InsertLineItems(ctx context.Context, receiptID uuid.UUID, items []entity.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	query := r.rebind(`INSERT INTO line_items (id, receipt_id, position, name, qty, price)
		VALUES (?, ?, ?, ?, ?, ?)`)

	for i, it := range items {
		_, err := r.db.ExecContext(ctx, query,
			uuid.New().String(), receiptID.String(), i, it.Name, it.Qty, it.Price)
		if err != nil {
			return fmt.Errorf("inserting line item %d: %w", i, err)
		}
	}
	r.logger.Info("store.insert_items.ok", "receipt_id", receiptID, "count", len(items))
	return nil
}

func (r *receiptRepository) FetchLineItems(ctx context.Context, receiptID uuid.UUID) ([]entity.LineItem, error) {
	query := r.rebind(`SELECT name, qty, price FROM line_items WHERE receipt_id = ? ORDER BY position`)
	rows, err := r.db.QueryContext(ctx, query, receiptID.String())
	if err != nil {
		return nil, fmt.Errorf("fetching line items: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.Name, &it.Qty, &it.Price); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *receiptRepository) FetchMetadata(ctx context.Context, receiptID uuid.UUID) (float64, float64, error) {
	query := r.rebind(`SELECT total, tax FROM receipts WHERE id = ?`)

	var total, tax float64
	err := r.db.QueryRowContext(ctx, query, receiptID.String()).Scan(&total, &tax)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("receipt %s: %w", receiptID, common.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("fetching metadata: %w", err)
	}
	return total, tax, nil
}

const selectReceiptColumns = `id, merchant, receipt_date, invoice_number, subtotal, tax, total, source_filename, uploaded_at`

func (r *receiptRepository) List(ctx context.Context) ([]entity.StoredReceipt, error) {
	query := `SELECT ` + selectReceiptColumns + ` FROM receipts ORDER BY uploaded_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var out []entity.StoredReceipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanReceipt(rows *sql.Rows) (entity.StoredReceipt, error) {
	var rec entity.StoredReceipt
	var id, uploadedAt string
	if err := rows.Scan(&id, &rec.Merchant, &rec.Date, &rec.InvoiceNumber,
		&rec.Subtotal, &rec.Tax, &rec.Total, &rec.SourceFilename, &uploadedAt); err != nil {
		return rec, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return rec, fmt.Errorf("bad receipt id %q: %w", id, err)
	}
	rec.ID = parsed
	if ts, err := time.Parse(time.RFC3339, uploadedAt); err == nil {
		rec.UploadedAt = ts
	}
	return rec, nil
}

func (r *receiptRepository) Delete(ctx context.Context, receiptID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM line_items WHERE receipt_id = ?`), receiptID.String()); err != nil {
		return fmt.Errorf("deleting line items: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM receipts WHERE id = ?`), receiptID.String())
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, common.ErrNotFound)
	}
	r.logger.Info("store.delete.ok", "receipt_id", receiptID)
	return nil
}

func (r *receiptRepository) Clear(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM line_items`); err != nil {
		return 0, fmt.Errorf("clearing line items: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM receipts`)
	if err != nil {
		return 0, fmt.Errorf("clearing receipts: %w", err)
	}
	n, _ := res.RowsAffected()
	r.logger.Info("store.clear.ok", "deleted", n)
	return n, nil
}
