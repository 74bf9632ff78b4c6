package lookup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseRecords extracts the JSON array embedded in a free-text response and
// decodes it into records.
func ParseRecords(text string) ([]Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	block, err := ExtractJSONArray(text)
	if err != nil {
		return nil, err
	}
	return decodeRecords(block)
}

// ExtractJSONArray returns the first balanced [...] block in text that
// decodes to a non-empty array of objects. Brackets inside JSON strings are
// ignored, so nested arrays and names such as "Acme [Holdings]" are handled.
// Markdown fences and surrounding prose are skipped naturally, and so are
// empty blocks such as a "- [ ]" checkbox; the first empty array is returned
// only when nothing else decodes.
func ExtractJSONArray(text string) (string, error) {
	balanced := false
	empty := ""
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end, ok := matchBracket(text, start); ok {
			balanced = true
			block := text[start : end+1]
			if recs, err := decodeRecords(block); err == nil {
				if len(recs) > 0 {
					return block, nil
				}
				if empty == "" {
					empty = block
				}
			}
		}

		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}

	if empty != "" {
		return empty, nil
	}
	if balanced {
		return "", ErrMalformedJSON
	}
	return "", ErrNoJSONArray
}

// matchBracket returns the index of the ']' closing the '[' at start.
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func decodeRecords(block string) ([]Record, error) {
	dec := json.NewDecoder(strings.NewReader(block))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	records := make([]Record, 0, len(raw))
	for _, obj := range raw {
		if obj == nil {
			continue
		}
		rec := make(Record, len(obj))
		for k, v := range obj {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// stringify renders a decoded JSON value as cell text. CIKs often come back
// as bare numbers, so numbers keep their literal form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Get returns the value stored under key. Keys are matched exactly first and
// then case-insensitively with surrounding whitespace ignored, since models
// drift between "company name" and "Company Name".
func (r Record) Get(key string) (string, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	want := strings.TrimSpace(key)
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), want) {
			return v, true
		}
	}
	return "", false
}
