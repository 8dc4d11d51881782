package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricehunt-engine/internal/domain"
)

// CreateProduct inserts a catalog entry. Catalog management lives outside the
// engine; this exists for seeding and tests.
func (d *DB) CreateProduct(ctx context.Context, name, description string) (domain.Product, error) {
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := d.Pool.ExecContext(ctx, d.q(`
INSERT INTO products(id, name, description, active, created_at)
VALUES(?,?,?,?,?);`),
		p.ID, p.Name, p.Description, 1, formatTime(p.CreatedAt))
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (d *DB) SetProductActive(ctx context.Context, id string, active bool) error {
	v := 0
	if active {
		v = 1
	}
	res, err := d.Pool.ExecContext(ctx, d.q(`UPDATE products SET active = ? WHERE id = ?;`), v, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const productCols = `id, name, description, active, last_best_price, last_best_price_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		active    int64
		best      sql.NullFloat64
		bestDate  sql.NullString
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &active, &best, &bestDate, &createdAt); err != nil {
		return domain.Product{}, err
	}
	p.Active = active != 0
	p.CreatedAt = parseTime(createdAt)
	if best.Valid {
		v := best.Float64
		p.LastBestPrice = &v
	}
	if bestDate.Valid && bestDate.String != "" {
		t := parseTime(bestDate.String)
		p.LastBestPriceDate = &t
	}
	return p, nil
}

func (d *DB) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(d.Pool.QueryRowContext(ctx, d.q(`
SELECT `+productCols+`
FROM products
WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}
