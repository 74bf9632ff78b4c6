package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companies(t *testing.T, opts Options) *Table {
	t.Helper()
	if opts.KeyColumn == "" {
		opts.KeyColumn = "name"
	}
	tbl, err := New(
		[]string{"name", "value"},
		[][]string{{"YouTube"}, {"Microsoft", ""}, {"Cargill", "privately owned"}},
		opts,
	)
	require.NoError(t, err)
	return tbl
}

func keys(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Key())
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("pads short rows and adds target columns", func(t *testing.T) {
		tbl := companies(t, Options{EnsureColumns: []string{"value", "parent"}})
		assert.Equal(t, []string{"name", "value", "parent"}, tbl.Header())
		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, []string{"YouTube", "", ""}, tbl.Records()[0])
		assert.Equal(t, "name", tbl.KeyColumn())
		assert.True(t, tbl.HasColumn("parent"))
	})

	t.Run("missing key column", func(t *testing.T) {
		_, err := New([]string{"a"}, nil, Options{KeyColumn: "name"})
		require.ErrorIs(t, err, ErrMissingKeyColumn)
	})

	t.Run("empty header", func(t *testing.T) {
		_, err := New(nil, nil, Options{KeyColumn: "name"})
		require.ErrorIs(t, err, ErrEmptyHeader)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := New([]string{"name"}, [][]string{{"a", "b"}}, Options{KeyColumn: "name"})
		require.ErrorIs(t, err, ErrRaggedRow)
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := New([]string{"name", "name"}, nil, Options{KeyColumn: "name"})
		require.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("duplicate keys rejected", func(t *testing.T) {
		_, err := New([]string{"name"}, [][]string{{"Acme"}, {"Other"}, {" Acme "}},
			Options{KeyColumn: "name", Duplicates: DuplicateReject})
		require.ErrorIs(t, err, ErrDuplicateKey)
		assert.Contains(t, err.Error(), "rows 1 and 3")
	})

	t.Run("duplicate keys allowed by default", func(t *testing.T) {
		_, err := New([]string{"name"}, [][]string{{"Acme"}, {"Acme"}}, Options{KeyColumn: "name"})
		require.NoError(t, err)
	})
}

func TestSelectUnprocessed(t *testing.T) {
	tbl := companies(t, Options{})
	assert.Equal(t, []string{"YouTube", "Microsoft"}, keys(tbl.SelectUnprocessed("value")))

	// Whitespace counts as empty.
	tbl.UpdateByKey("YouTube", map[string]string{"value": "  "})
	assert.Equal(t, []string{"YouTube", "Microsoft"}, keys(tbl.SelectUnprocessed("value")))

	// A target column that does not exist yet means nothing is processed.
	assert.Len(t, tbl.SelectUnprocessed("cik"), 3)
}

func TestUpdateByKey(t *testing.T) {
	tbl := companies(t, Options{})

	n := tbl.UpdateByKey("Cargill", map[string]string{"value": "N/A"})
	assert.Equal(t, 1, n)
	assert.Equal(t, "N/A", tbl.Row(2).Get("value"))

	t.Run("unknown key is a no-op", func(t *testing.T) {
		before := tbl.Records()
		assert.Zero(t, tbl.UpdateByKey("Umbrella Corp", map[string]string{"value": "1"}))
		assert.Equal(t, before, tbl.Records())
	})

	t.Run("matches trimmed keys", func(t *testing.T) {
		assert.Equal(t, 1, tbl.UpdateByKey("  Microsoft ", map[string]string{"value": "789019"}))
		assert.Equal(t, "789019", tbl.Row(1).Get("value"))
	})

	t.Run("new column is appended", func(t *testing.T) {
		assert.Equal(t, 1, tbl.UpdateByKey("YouTube", map[string]string{"parent": "Alphabet Inc."}))
		assert.Equal(t, []string{"name", "value", "parent"}, tbl.Header())
		assert.Equal(t, "Alphabet Inc.", tbl.Row(0).Get("parent"))
		assert.Equal(t, "", tbl.Row(1).Get("parent"))
	})

	t.Run("updates every duplicate", func(t *testing.T) {
		dup, err := New([]string{"name", "v"}, [][]string{{"Acme"}, {"Beta"}, {"Acme"}}, Options{KeyColumn: "name"})
		require.NoError(t, err)
		assert.Equal(t, 2, dup.UpdateByKey("Acme", map[string]string{"v": "x"}))
		assert.Equal(t, [][]string{{"Acme", "x"}, {"Beta", ""}, {"Acme", "x"}}, dup.Records())
	})
}

func TestFillByKey(t *testing.T) {
	tbl := companies(t, Options{})

	assert.Zero(t, tbl.FillByKey("Cargill", "value", map[string]string{"value": "overwritten"}))
	assert.Equal(t, "privately owned", tbl.Row(2).Get("value"))

	assert.Equal(t, 1, tbl.FillByKey("YouTube", "value", map[string]string{"value": "1652044"}))
	assert.Equal(t, "1652044", tbl.Row(0).Get("value"))
}

func TestStats(t *testing.T) {
	tbl := companies(t, Options{})
	assert.Equal(t, Stats{Rows: 3, Processed: 1, Unprocessed: 2}, tbl.Stats("value"))
}

func TestRecordsIsACopy(t *testing.T) {
	tbl := companies(t, Options{})
	recs := tbl.Records()
	recs[0][0] = "mutated"
	assert.Equal(t, "YouTube", tbl.Row(0).Key())
	assert.Equal(t, 0, tbl.Row(0).Index())
	assert.Equal(t, "", tbl.Row(0).Get("missing"))
}
