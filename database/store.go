package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ticketflow/dataset"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig connection pool settings for the SQLite store.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultDBConfig returns sane pooling defaults for a single batch run.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Store is the persisted keyed table store. One pipeline run owns the
// store exclusively; there is no cross-run locking.
type Store struct {
	conn             *sql.DB
	tableCreateMutex sync.Mutex
}

// Open opens (or creates) the SQLite database at path.
func Open(path string, cfg DBConfig) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// HasTable reports whether a table exists.
func (s *Store) HasTable(name string) (bool, error) {
	var n int
	err := s.conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// TableNames lists all user tables.
func (s *Store) TableNames() ([]string, error) {
	rows, err := s.conn.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RowCount returns the number of rows in a table.
func (s *Store) RowCount(name string) (int, error) {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM ` + quoteIdent(name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}
	return n, nil
}

// ReadTable loads a whole table into memory. A missing table returns
// (nil, nil): the caller treats it as "no prior data".
func (s *Store) ReadTable(name string) (*dataset.Table, error) {
	ok, err := s.HasTable(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rows, err := s.conn.Query(`SELECT * FROM ` + quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	t := dataset.NewTable(name, columns...)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		row := make(dataset.Row, len(columns))
		for i, c := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[c] = string(v)
			default:
				row[c] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// ReplaceTable writes a table with replace semantics: DROP + CREATE +
// INSERT inside one transaction, so each table write is its own atomic
// unit. Column storage types come from the registry types map; columns
// without an entry are stored as TEXT.
func (s *Store) ReplaceTable(t *dataset.Table, types map[string]dataset.ColumnType) error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("refusing to replace %s with an empty column set", t.Name)
	}

	s.tableCreateMutex.Lock()
	defer s.tableCreateMutex.Unlock()

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoteIdent(t.Name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", t.Name, err)
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c) + " " + storageType(types[c])
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",")
	quoted := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = quoteIdent(c)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(quoted, ", "), placeholders)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			args[i] = storageValue(row[c], types[c])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}
	log.Printf("Table %s replaced, %d rows", t.Name, len(t.Rows))
	return nil
}

func storageType(ct dataset.ColumnType) string {
	switch ct {
	case dataset.TypeInteger:
		return "INTEGER"
	case dataset.TypeReal:
		return "REAL"
	default:
		// DATE and DATETIME are stored as TEXT literals
		return "TEXT"
	}
}

func storageValue(v any, ct dataset.ColumnType) any {
	ts, ok := v.(time.Time)
	if !ok {
		return v
	}
	if ct == dataset.TypeDate {
		return ts.Format("2006-01-02")
	}
	return ts.Format("2006-01-02 15:04:05")
}

// quoteIdent quotes a table or column identifier; source column names
// carry accents and mixed case.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
