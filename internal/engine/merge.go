package engine

import (
	"sort"
	"strings"

	"github.com/rshade/enrichr/internal/lookup"
	"github.com/rshade/enrichr/internal/table"
)

// FieldMapping copies one response field into one table column. Default is
// written when the response omits the field or leaves it empty.
type FieldMapping struct {
	Response string `yaml:"response"`
	Column   string `yaml:"column"`
	Default  string `yaml:"default,omitempty"`
}

// LookupResult maps a key to the column values to write for it.
type LookupResult map[string]map[string]string

// Keys returns the result keys in sorted order.
func (r LookupResult) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeStats reports what a Merge did.
type MergeStats struct {
	// Enriched counts table rows that received values.
	Enriched int
	// Stale counts result keys that matched no unprocessed row.
	Stale int
}

// BuildResult converts parsed response records into a LookupResult.
//
// Records without a responseKey value are dropped. A field missing from a
// record falls back to its mapping Default. A record whose targetColumn value
// ends up empty is dropped, since writing it would leave the row
// unprocessed anyway. When several records share a key the first one wins.
// The second return value counts dropped records.
func BuildResult(records []lookup.Record, responseKey string, fields []FieldMapping, targetColumn string) (LookupResult, int) {
	result := make(LookupResult, len(records))
	dropped := 0

	for _, rec := range records {
		key, ok := rec.Get(responseKey)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			dropped++
			continue
		}
		if _, seen := result[key]; seen {
			dropped++
			continue
		}

		values := make(map[string]string, len(fields))
		for _, f := range fields {
			v, _ := rec.Get(f.Response)
			v = strings.TrimSpace(v)
			if v == "" {
				v = f.Default
			}
			values[f.Column] = v
		}

		if strings.TrimSpace(values[targetColumn]) == "" {
			dropped++
			continue
		}
		result[key] = values
	}
	return result, dropped
}

// Merge writes result into tbl. Only rows whose target column is still empty
// are touched; keys that match no such row are counted as stale and
// otherwise ignored.
func Merge(tbl *table.Table, target string, result LookupResult) MergeStats {
	var stats MergeStats
	for _, key := range result.Keys() {
		n := tbl.FillByKey(key, target, result[key])
		if n == 0 {
			stats.Stale++
			continue
		}
		stats.Enriched += n
	}
	return stats
}
