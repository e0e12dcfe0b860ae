package parties

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Party, int, error)
	Get(ctx context.Context, id int64) (Party, error)
	Create(ctx context.Context, party Party) (Party, error)
	Update(ctx context.Context, id int64, party Party) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const partyColumns = `id, kind, code, name, email, phone, address, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Party, int, error) {
	where := ` WHERE kind = $1`
	args := []interface{}{filters.Kind}
	argCount := 1

	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM parties`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("parties: count: %w", err)
	}

	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	query := `SELECT ` + partyColumns + ` FROM parties` + where + ` ORDER BY name ASC`
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, perPage)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("parties: list: %w", err)
	}
	defer rows.Close()

	var result []Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, party)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Party, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id)
	party, err := scanParty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, fmt.Errorf("parties: party %d: %w", id, httpx.ErrNotFound)
	}
	return party, err
}

func (r *repository) Create(ctx context.Context, party Party) (Party, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO parties (kind, code, name, email, phone, address, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		party.Kind, party.Code, party.Name, party.Email, party.Phone, party.Address, party.IsActive, now,
	).Scan(&party.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Party{}, fmt.Errorf("parties: code already in use: %w", httpx.ErrDuplicate)
		}
		return Party{}, fmt.Errorf("parties: create: %w", err)
	}
	party.CreatedAt = now
	party.UpdatedAt = now
	return party, nil
}

func (r *repository) Update(ctx context.Context, id int64, party Party) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE parties SET code = $1, name = $2, email = $3, phone = $4, address = $5, is_active = $6, updated_at = $7
		 WHERE id = $8`,
		party.Code, party.Name, party.Email, party.Phone, party.Address, party.IsActive, time.Now(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("parties: code already in use: %w", httpx.ErrDuplicate)
		}
		return fmt.Errorf("parties: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parties: party %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanParty(row pgx.Row) (Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Kind, &p.Code, &p.Name, &p.Email, &p.Phone, &p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
