package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rshade/enrichr/internal/engine"
)

// ErrUnknownProfile is returned for profile names that are not built in.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a named preset for a known enrichment job.
type Profile struct {
	Name        string
	Description string
	Job         JobConfig
	Prompt      string
}

// builtinProfiles returns the presets keyed by name.
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"cik": {
			Name:        "cik",
			Description: "SEC CIK and parent company for company names",
			Prompt:      "cik",
			Job: JobConfig{
				KeyColumn:    "AI_derived_parent_name",
				TargetColumn: "cik",
				ResponseKey:  "company name",
				Fields: []engine.FieldMapping{
					{Response: "parent company", Column: "GROUP_NAME", Default: "N/A"},
					{Response: "cik", Column: "cik", Default: "privately owned"},
				},
				ChunkSize:  25, //nolint:mnd // Profile preset.
				MaxWorkers: 12, //nolint:mnd // Profile preset.
			},
		},
		"parent": {
			Name:        "parent",
			Description: "Ultimate parent organisation for facility names",
			Prompt:      "parent",
			Job: JobConfig{
				KeyColumn:    "FAC_NAME",
				TargetColumn: "AI_derived_parent_name",
				ResponseKey:  "facility name",
				Fields: []engine.FieldMapping{
					{Response: "parent company name", Column: "AI_derived_parent_name"},
				},
				ChunkSize:  50, //nolint:mnd // Profile preset.
				MaxWorkers: 20, //nolint:mnd // Profile preset.
			},
		},
	}
}

// Profiles lists the built-in profiles sorted by name.
func Profiles() []Profile {
	all := builtinProfiles()
	out := make([]Profile, 0, len(all))
	for _, p := range all {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupProfile returns the built-in profile called name.
func LookupProfile(name string) (Profile, error) {
	p, ok := builtinProfiles()[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// ApplyProfile copies the profile's job layout and prompt into c. Input,
// output and duplicate handling are left alone.
func (c *Config) ApplyProfile(name string) error {
	p, err := LookupProfile(name)
	if err != nil {
		return err
	}
	c.Profile = p.Name
	c.Job.KeyColumn = p.Job.KeyColumn
	c.Job.TargetColumn = p.Job.TargetColumn
	c.Job.ResponseKey = p.Job.ResponseKey
	c.Job.Fields = append([]engine.FieldMapping(nil), p.Job.Fields...)
	c.Job.ChunkSize = p.Job.ChunkSize
	c.Job.MaxWorkers = p.Job.MaxWorkers
	c.Lookup.Prompt = p.Prompt
	return nil
}
