package database

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketflow/dataset"
)

const metadataTable = "table_metadata"

// MetadataRegistry is the (table, column) -> declared type side table.
// It implements dataset.Registry.
type MetadataRegistry struct {
	store *Store
}

// NewMetadataRegistry creates the side table when absent.
func NewMetadataRegistry(store *Store) (*MetadataRegistry, error) {
	store.tableCreateMutex.Lock()
	defer store.tableCreateMutex.Unlock()

	_, err := store.conn.Exec(`CREATE TABLE IF NOT EXISTS ` + metadataTable + ` (
		table_name  TEXT NOT NULL,
		column_name TEXT NOT NULL,
		data_type   TEXT NOT NULL,
		PRIMARY KEY (table_name, column_name)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", metadataTable, err)
	}
	return &MetadataRegistry{store: store}, nil
}

// ColumnType returns the declared type of a column, if registered.
func (r *MetadataRegistry) ColumnType(table, column string) (dataset.ColumnType, bool, error) {
	var dt string
	err := r.store.conn.QueryRow(
		`SELECT data_type FROM `+metadataTable+` WHERE table_name = ? AND column_name = ?`,
		table, column).Scan(&dt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata for %s.%s: %w", table, column, err)
	}
	return dataset.ColumnType(dt), true, nil
}

// SetColumnType registers (or overwrites) a column's declared type.
func (r *MetadataRegistry) SetColumnType(table, column string, t dataset.ColumnType) error {
	if !dataset.ValidType(t) {
		return fmt.Errorf("invalid column type %q for %s.%s", t, table, column)
	}
	_, err := r.store.conn.Exec(
		`INSERT INTO `+metadataTable+` (table_name, column_name, data_type) VALUES (?, ?, ?)
		 ON CONFLICT (table_name, column_name) DO UPDATE SET data_type = excluded.data_type`,
		table, column, string(t))
	if err != nil {
		return fmt.Errorf("failed to set metadata for %s.%s: %w", table, column, err)
	}
	return nil
}

// TableTypes returns every registered column type of one table, the map
// ReplaceTable wants for storage type declarations.
func (r *MetadataRegistry) TableTypes(table string) (map[string]dataset.ColumnType, error) {
	rows, err := r.store.conn.Query(
		`SELECT column_name, data_type FROM `+metadataTable+` WHERE table_name = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of %s: %w", table, err)
	}
	defer rows.Close()

	types := make(map[string]dataset.ColumnType)
	for rows.Next() {
		var column, dt string
		if err := rows.Scan(&column, &dt); err != nil {
			return nil, err
		}
		types[column] = dataset.ColumnType(dt)
	}
	return types, rows.Err()
}
