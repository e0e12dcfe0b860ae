package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
	ListAll(ctx context.Context) ([]Document, error)
	Create(ctx context.Context, doc Document) (int64, error)
	UpdateHeader(ctx context.Context, doc Document) error
	InsertLine(ctx context.Context, line Line) (int64, error)
	DeleteLines(ctx context.Context, documentID int64) error
	UpdateStatus(ctx context.Context, id int64, status Status, userID int64, reason *string) error
	GenerateNumber(ctx context.Context, docType DocType, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const docColumns = `d.id, d.doc_number, d.doc_type, d.party_id, d.doc_date, d.status,
	d.discount_type, d.discount_value, d.subtotal, d.discount_amount,
	d.tax_rate, d.tax_amount, d.total_amount, d.notes, d.created_by,
	d.cancelled_by, d.cancelled_at, d.cancellation_reason, d.created_at, d.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	query := `SELECT ` + docColumns + `, p.name
		FROM documents d JOIN parties p ON d.party_id = p.id
		WHERE d.id = $1`
	row := r.db.QueryRow(ctx, query, id)

	var doc Document
	if err := scanDocument(row, &doc, true); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("documents: document %d: %w", id, httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("documents: get: %w", err)
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *repository) getLines(ctx context.Context, documentID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, item_id, item_name, quantity, rate, amount, line_order
		 FROM document_lines WHERE document_id = $1 ORDER BY line_order ASC, id ASC`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("documents: get lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.ItemID, &line.ItemName,
			&line.Quantity, &line.Rate, &line.Amount, &line.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	conditions := "d.doc_type = $1"
	args := []interface{}{req.Type}
	argPos := 1

	if req.PartyID != nil {
		argPos++
		conditions += fmt.Sprintf(" AND d.party_id = $%d", argPos)
		args = append(args, *req.PartyID)
	}
	if req.Status != nil {
		argPos++
		conditions += fmt.Sprintf(" AND d.status = $%d", argPos)
		args = append(args, *req.Status)
	}
	if req.DateFrom != nil {
		argPos++
		conditions += fmt.Sprintf(" AND d.doc_date >= $%d", argPos)
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil {
		argPos++
		conditions += fmt.Sprintf(" AND d.doc_date <= $%d", argPos)
		args = append(args, *req.DateTo)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM documents d WHERE "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("documents: count: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT `+docColumns+`, p.name
		FROM documents d JOIN parties p ON d.party_id = p.id
		WHERE %s
		ORDER BY d.doc_date DESC, d.id DESC
		LIMIT $%d OFFSET $%d`, conditions, argPos+1, argPos+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := scanDocument(rows, &doc, true); err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

// ListAll streams every document with its lines for the integrity scan.
func (r *repository) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := r.db.Query(ctx, `SELECT `+docColumns+`, p.name
		FROM documents d JOIN parties p ON d.party_id = p.id
		ORDER BY d.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("documents: list all: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := scanDocument(rows, &doc, true); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		lines, err := r.getLines(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Lines = lines
	}
	return docs, nil
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO documents (doc_number, doc_type, party_id, doc_date, status,
			discount_type, discount_value, subtotal, discount_amount,
			tax_rate, tax_amount, total_amount, notes, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		 RETURNING id`,
		doc.DocNumber, doc.Type, doc.PartyID, doc.DocDate, doc.Status,
		doc.DiscountType, doc.DiscountValue, doc.Subtotal, doc.DiscountAmount,
		doc.TaxRate, doc.TaxAmount, doc.TotalAmount, doc.Notes, doc.CreatedBy,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("documents: doc number %s already exists: %w", doc.DocNumber, httpx.ErrDuplicate)
		}
		return 0, fmt.Errorf("documents: create: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, doc Document) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET doc_date = $1, discount_type = $2, discount_value = $3,
			subtotal = $4, discount_amount = $5, tax_rate = $6, tax_amount = $7,
			total_amount = $8, notes = $9, updated_at = NOW()
		 WHERE id = $10`,
		doc.DocDate, doc.DiscountType, doc.DiscountValue,
		doc.Subtotal, doc.DiscountAmount, doc.TaxRate, doc.TaxAmount,
		doc.TotalAmount, doc.Notes, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("documents: update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documents: document %d: %w", doc.ID, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO document_lines (document_id, item_id, item_name, quantity, rate, amount, line_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		line.DocumentID, line.ItemID, line.ItemName, line.Quantity, line.Rate, line.Amount, line.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("documents: insert line: %w", err)
	}
	return id, nil
}

func (r *repository) DeleteLines(ctx context.Context, documentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("documents: delete lines: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, userID int64, reason *string) error {
	var tag pgconn.CommandTag
	var err error
	if status == StatusCancelled {
		tag, err = r.db.Exec(ctx,
			`UPDATE documents SET status = $1, cancelled_by = $2, cancelled_at = NOW(),
				cancellation_reason = $3, updated_at = NOW() WHERE id = $4`,
			status, userID, reason, id,
		)
	} else {
		tag, err = r.db.Exec(ctx,
			`UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("documents: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documents: document %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// GenerateNumber produces {prefix}-{YYMM}-{seq} per document type.
func (r *repository) GenerateNumber(ctx context.Context, docType DocType, date time.Time) (string, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE doc_type = $1`, docType).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("documents: generate number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", docType.Prefix(), date.Format("0601"), count+1), nil
}

// scanDocument scans one document row; withParty expects the joined party name
// as the trailing column.
func scanDocument(row pgx.Row, doc *Document, withParty bool) error {
	dest := []interface{}{
		&doc.ID, &doc.DocNumber, &doc.Type, &doc.PartyID, &doc.DocDate, &doc.Status,
		&doc.DiscountType, &doc.DiscountValue, &doc.Subtotal, &doc.DiscountAmount,
		&doc.TaxRate, &doc.TaxAmount, &doc.TotalAmount, &doc.Notes, &doc.CreatedBy,
		&doc.CancelledBy, &doc.CancelledAt, &doc.CancellationReason, &doc.CreatedAt, &doc.UpdatedAt,
	}
	if withParty {
		dest = append(dest, &doc.PartyName)
	}
	return row.Scan(dest...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
