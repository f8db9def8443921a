// Package database removes inventory rows whose bucket objects are missing.
package database

import (
	"context"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// identPattern limits table and column names to plain SQL identifiers,
// since both are read from the interactive prompt.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open connects to Postgres and verifies the connection.
func Open(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// DeleteMissingIDs removes the rows of table whose column value is one of
// ids. When source is non-empty, only rows with that source value are
// touched. Returns the number of rows removed.
func DeleteMissingIDs(ctx context.Context, db *sqlx.DB, table, column, source string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := buildDeleteQuery(table, column, source, ids)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rows from %s: %w", table, err)
	}
	return res.RowsAffected()
}

// buildDeleteQuery expands the full id set into one IN-clause statement.
// The returned query uses ? bindvars; callers rebind for the driver.
func buildDeleteQuery(table, column, source string, ids []string) (string, []interface{}, error) {
	for _, ident := range []string{table, column} {
		if !identPattern.MatchString(ident) {
			return "", nil, fmt.Errorf("invalid identifier %q", ident)
		}
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (?)", table, column)
	args := []interface{}{ids}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand id list: %w", err)
	}
	return query, expanded, nil
}
