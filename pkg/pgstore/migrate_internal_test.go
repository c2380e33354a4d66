package pgstore

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateSlogAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var log migrateLogger = slog.New(slog.NewTextHandler(&buf, nil))
	a := &migrateSlogAdapter{log: log}

	a.Printf("OK   %s", "00001_init.sql")
	a.Fatalf("failed to apply %d", 2)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "00001_init.sql")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "failed to apply 2")
}
