package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/enrichr/internal/lookup"
	"github.com/rshade/enrichr/internal/table"
)

var cikFields = []FieldMapping{
	{Response: "parent company", Column: "GROUP_NAME", Default: "N/A"},
	{Response: "cik", Column: "cik", Default: "privately owned"},
}

func TestBuildResult(t *testing.T) {
	tests := []struct {
		name        string
		records     []lookup.Record
		want        LookupResult
		wantDropped int
	}{
		{
			name: "all fields present",
			records: []lookup.Record{
				{"company name": "YouTube", "parent company": "Alphabet Inc.", "cik": "1652044"},
			},
			want: LookupResult{"YouTube": {"GROUP_NAME": "Alphabet Inc.", "cik": "1652044"}},
		},
		{
			name: "missing fields take defaults",
			records: []lookup.Record{
				{"company name": "Cargill"},
				{"company name": "Nike", "parent company": " ", "cik": "320187"},
			},
			want: LookupResult{
				"Cargill": {"GROUP_NAME": "N/A", "cik": "privately owned"},
				"Nike":    {"GROUP_NAME": "N/A", "cik": "320187"},
			},
		},
		{
			name: "records without a key are dropped",
			records: []lookup.Record{
				{"cik": "1"},
				{"company name": "  ", "cik": "2"},
				{"Company Name": " Microsoft ", "cik": "789019"},
			},
			want:        LookupResult{"Microsoft": {"GROUP_NAME": "N/A", "cik": "789019"}},
			wantDropped: 2,
		},
		{
			name: "first duplicate wins",
			records: []lookup.Record{
				{"company name": "YouTube", "cik": "1652044"},
				{"company name": "YouTube", "cik": "999"},
			},
			want:        LookupResult{"YouTube": {"GROUP_NAME": "N/A", "cik": "1652044"}},
			wantDropped: 1,
		},
		{
			name:    "no records",
			records: nil,
			want:    LookupResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := BuildResult(tt.records, "company name", cikFields, "cik")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestBuildResult_EmptyTargetDropped(t *testing.T) {
	fields := []FieldMapping{{Response: "parent company name", Column: "AI_derived_parent_name"}}
	records := []lookup.Record{
		{"facility name": "Plant A", "parent company name": ""},
		{"facility name": "Plant B", "parent company name": "Dow Inc."},
	}

	got, dropped := BuildResult(records, "facility name", fields, "AI_derived_parent_name")
	assert.Equal(t, LookupResult{"Plant B": {"AI_derived_parent_name": "Dow Inc."}}, got)
	assert.Equal(t, 1, dropped)
}

func TestMerge_PartialResult(t *testing.T) {
	tbl := newTable(t, "A", "B", "C")

	stats := Merge(tbl, "value", LookupResult{
		"A": {"value": "1"},
		"C": {"value": "3"},
	})

	assert.Equal(t, MergeStats{Enriched: 2}, stats)
	assert.Equal(t, []string{"1", "", "3"}, values(tbl))
	assert.Len(t, tbl.SelectUnprocessed("value"), 1)
}

func TestMerge_UnknownAndProcessedKeys(t *testing.T) {
	tbl := newTable(t, "A", "B")
	require.Equal(t, 1, tbl.UpdateByKey("A", map[string]string{"value": "old"}))
	before := tbl.Records()

	stats := Merge(tbl, "value", LookupResult{
		"Z": {"value": "ghost"},
		"A": {"value": "new"},
	})

	assert.Equal(t, MergeStats{Stale: 2}, stats)
	assert.Equal(t, before, tbl.Records())
}

func TestMerge_DuplicateRowsShareResult(t *testing.T) {
	tbl := newTable(t, "Acme", "Beta", "Acme")

	stats := Merge(tbl, "value", LookupResult{"Acme": {"value": "42"}})

	assert.Equal(t, MergeStats{Enriched: 2}, stats)
	assert.Equal(t, []string{"42", "", "42"}, values(tbl))
}

// The engine looks every key up once, so chunk results never share a key and
// any merge order must give the same table.
func TestMerge_OrderIndependent(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	results := []LookupResult{
		{"A": {"value": "1"}, "B": {"value": "2"}},
		{"C": {"value": "3"}},
		{"E": {"value": "5"}, "F": {"value": "6"}},
		{"Z": {"value": "unknown"}},
	}

	var want [][]string
	for _, perm := range permutations(len(results)) {
		tbl := newTable(t, names...)
		for _, i := range perm {
			Merge(tbl, "value", results[i])
		}
		if want == nil {
			want = tbl.Records()
			continue
		}
		assert.Equal(t, want, tbl.Records(), "permutation %v", perm)
	}
	assert.Equal(t, []string{"1", "2", "3", "", "5", "6", ""}, column(want, 1))
}

func newTable(t *testing.T, names ...string) *table.Table {
	t.Helper()
	records := make([][]string, len(names))
	for i, n := range names {
		records[i] = []string{n}
	}
	tbl, err := table.New([]string{"name"}, records, table.Options{
		KeyColumn:     "name",
		EnsureColumns: []string{"value"},
	})
	require.NoError(t, err)
	return tbl
}

func values(tbl *table.Table) []string {
	out := make([]string, tbl.Len())
	for i := range out {
		out[i] = tbl.Row(i).Get("value")
	}
	return out
}

func column(records [][]string, col int) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r[col]
	}
	return out
}

func permutations(n int) [][]int {
	var out [][]int
	var walk func(prefix []int, used []bool)
	walk = func(prefix []int, used []bool) {
		if len(prefix) == n {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			walk(append(prefix, i), used)
			used[i] = false
		}
	}
	walk(nil, make([]bool, n))
	return out
}
