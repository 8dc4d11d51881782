package store

import "context"

// Migrate creates the tables the engine writes to. The statements are
// idempotent and portable between sqlite and postgres.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  last_best_price DOUBLE PRECISION,
  last_best_price_date TEXT,
  created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS search_jobs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  status TEXT NOT NULL,
  progress INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS search_job_logs (
  job_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  at TEXT NOT NULL,
  message TEXT NOT NULL,
  progress INTEGER NOT NULL,
  PRIMARY KEY (job_id, seq)
);`, `
CREATE TABLE IF NOT EXISTS search_results (
  id TEXT PRIMARY KEY,
  job_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  shipping DOUBLE PRECISION NOT NULL DEFAULT 0,
  link TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  marketplace TEXT NOT NULL,
  seller_name TEXT NOT NULL DEFAULT '',
  item_condition TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  match_score INTEGER NOT NULL CHECK (match_score > 50),
  reasoning TEXT NOT NULL DEFAULT '',
  normalized_name TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  group_hash TEXT NOT NULL,
  suggestion TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS match_cache (
  hash TEXT PRIMARY KEY,
  score INTEGER NOT NULL,
  reasoning TEXT NOT NULL,
  normalized_name TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  suggestion TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_search_results_job ON search_results(job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_search_jobs_product ON search_jobs(product_id);`,
	}

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}
