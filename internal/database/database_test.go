package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteMissingIDsEmptySet(t *testing.T) {
	// An empty id set is a no-op and must not touch the connection.
	n, err := DeleteMissingIDs(context.Background(), nil, "stories", "id", "", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildDeleteQuery(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		ids       []string
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "one placeholder per id",
			ids:       []string{"123", "456", "789"},
			wantQuery: "DELETE FROM stories WHERE id IN (?, ?, ?)",
			wantArgs:  []interface{}{"123", "456", "789"},
		},
		{
			name:      "source filter appended after the id set",
			source:    "fictionpress",
			ids:       []string{"123", "456"},
			wantQuery: "DELETE FROM stories WHERE id IN (?, ?) AND source = ?",
			wantArgs:  []interface{}{"123", "456", "fictionpress"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildDeleteQuery("stories", "id", tt.source, tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestDeleteMissingIDsRejectsBadIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		column string
	}{
		{name: "table with spaces", table: "stories; drop table users", column: "id"},
		{name: "quoted column", table: "stories", column: `id" OR "1"="1`},
		{name: "empty table", table: "", column: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Identifier validation runs before any statement is built, so a
			// nil connection is safe here too.
			_, err := DeleteMissingIDs(context.Background(), nil, tt.table, tt.column, "", []string{"123"})
			assert.ErrorContains(t, err, "invalid identifier")
		})
	}
}
