package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	data := "\ufeffname,value\nYouTube,\n\"Procter & Gamble, Co.\",80424\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	tbl, err := Load(path, Options{KeyColumn: "name", EnsureColumns: []string{"parent"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "value", "parent"}, tbl.Header())
	assert.Equal(t, "Procter & Gamble, Co.", tbl.Row(1).Key())
	assert.Equal(t, "80424", tbl.Row(1).Get("value"))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		opts    Options
		want    error
	}{
		{name: "missing file", file: "absent.csv", want: os.ErrNotExist},
		{name: "unsupported", file: "data.json", content: "{}", want: ErrUnsupportedFormat},
		{name: "compressed xlsx", file: "data.xlsx.gz", content: "x", want: ErrUnsupportedFormat},
		{name: "empty", file: "empty.csv", content: "", want: ErrEmptyHeader},
		{name: "no key column", file: "nokey.csv", content: "a,b\n1,2\n", want: ErrMissingKeyColumn},
		{
			name: "duplicate keys", file: "dups.csv", content: "name\nA\nA\n",
			opts: Options{Duplicates: DuplicateReject}, want: ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if tt.content != "" || tt.name == "empty" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			}
			opts := tt.opts
			opts.KeyColumn = "name"

			_, err := Load(path, opts)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, path, loadErr.Path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPersistRoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.tsv", "out.csv.gz", "out.tsv.zst", "out.csv.xz", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tbl := companies(t, Options{})
			tbl.UpdateByKey("YouTube", map[string]string{"value": "1652044", "parent": "Alphabet Inc.\tHoldings"})

			path := filepath.Join(dir, name)
			require.NoError(t, tbl.Persist(path))

			loaded, err := Load(path, Options{KeyColumn: "name"})
			require.NoError(t, err)
			assert.Equal(t, tbl.Header(), loaded.Header())
			assert.Equal(t, tbl.Records(), loaded.Records())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary files must not be left behind")
		})
	}
}

func TestPersist_OverwritesWholeSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := companies(t, Options{})
	require.NoError(t, tbl.Persist(path))

	tbl.UpdateByKey("Microsoft", map[string]string{"value": "789019"})
	require.NoError(t, tbl.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,value\nYouTube,\nMicrosoft,789019\nCargill,privately owned\n", string(data))
}

func TestPersist_Failure(t *testing.T) {
	dir := t.TempDir()
	tbl := companies(t, Options{})

	t.Run("unsupported format", func(t *testing.T) {
		err := tbl.Persist(filepath.Join(dir, "out.parquet"))
		var persistErr *PersistError
		require.ErrorAs(t, err, &persistErr)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("rename blocked by directory", func(t *testing.T) {
		target := filepath.Join(dir, "blocked.csv")
		require.NoError(t, os.Mkdir(target, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o600))

		err := tbl.Persist(target)
		var persistErr *PersistError
		require.ErrorAs(t, err, &persistErr)
		assert.Equal(t, target, persistErr.Path)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-", "temporary file left behind")
		}
	})
}
