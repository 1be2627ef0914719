package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesOrdered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":       {Data: []byte("CREATE INDEX ...")},
		"001_create_analyses.sql": {Data: []byte("CREATE TABLE ...")},
		"README.md":               {Data: []byte("docs")},
		"archive/000_old.sql":     {Data: []byte("--")},
	}
	names, err := MigrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_analyses.sql", "002_add_index.sql"}, names)
}
