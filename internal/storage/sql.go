package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect captures the per-driver SQL for a two-column key/value table.
type dialect struct {
	driver string
	create string // %s = table
	get    string
	upsert string
	delete string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		create: `CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		get:    `SELECT value FROM %s WHERE name = ?`,
		upsert: `INSERT INTO %s (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM %s WHERE name = ?`,
	}

	postgresDialect = dialect{
		driver: "postgres",
		create: `CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		get:    `SELECT value FROM %s WHERE name = $1`,
		upsert: `INSERT INTO %s (name, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM %s WHERE name = $1`,
	}

	mysqlDialect = dialect{
		driver: "mysql",
		create: `CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) PRIMARY KEY,
			value LONGTEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		get:    `SELECT value FROM %s WHERE name = ?`,
		upsert: `INSERT INTO %s (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		delete: `DELETE FROM %s WHERE name = ?`,
	}
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLKV stores values in a single table of a relational database.
type SQLKV struct {
	conn    *sql.DB
	dialect dialect
	table   string
}

// OpenSQL opens the database and creates the table if needed.
func OpenSQL(ctx context.Context, d dialect, dsn, table string) (*SQLKV, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == "sqlite" {
		// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}

	kv := &SQLKV{conn: conn, dialect: d, table: table}
	if err := kv.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return kv, nil
}

func (s *SQLKV) migrate(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, s.q(s.dialect.create))
	return err
}

func (s *SQLKV) q(tmpl string) string {
	return fmt.Sprintf(tmpl, s.table)
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, s.q(s.dialect.get), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.conn.ExecContext(ctx, s.q(s.dialect.upsert), key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, s.q(s.dialect.delete), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Close() error {
	return s.conn.Close()
}
