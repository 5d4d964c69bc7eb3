package postgres

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTable = regexp.MustCompile(`(?i)CREATE TABLE (?:IF NOT EXISTS )?(\w+)`)
	dropTable   = regexp.MustCompile(`(?i)DROP TABLE (?:IF EXISTS )?(\w+)`)
)

func TestMigrationsDropWhatTheyCreate(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			raw, err := os.ReadFile(file)
			require.NoError(t, err)

			up, down, ok := strings.Cut(string(raw), "-- +goose Down")
			require.True(t, ok, "missing down section")

			dropped := map[string]bool{}
			for _, m := range dropTable.FindAllStringSubmatch(down, -1) {
				dropped[m[1]] = true
			}
			for _, m := range createTable.FindAllStringSubmatch(up, -1) {
				assert.True(t, dropped[m[1]], "table %s is not dropped", m[1])
			}
		})
	}
}
