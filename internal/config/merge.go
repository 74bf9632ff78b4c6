package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names.
const (
	keyRequires = "requires"
	keyProfile  = "profile"
	keyJob      = "job"
	keyLookup   = "lookup"
	keyLogging  = "logging"
	keyMetrics  = "metrics"
)

// knownTopLevelKeys lists the YAML keys that correspond to Config fields.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyRequires: true,
	keyProfile:  true,
	keyJob:      true,
	keyLookup:   true,
	keyLogging:  true,
	keyMetrics:  true,
}

// ErrUnknownKey is returned for top-level keys that are not part of Config.
var ErrUnknownKey = errors.New("unknown config key")

// MergeYAML overlays YAML data onto target section by section. Fields set in
// a section replace the target's; fields absent keep their current value, so
// a file that only names an input still inherits the profile's columns. Lists
// such as job.fields are replaced as a whole.
func MergeYAML(target *Config, data []byte) error {
	if target == nil {
		return errors.New("nil target *Config in MergeYAML")
	}

	var overlay map[string]yaml.Node
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if err := decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying section %q: %w", key, err)
		}
	}
	return nil
}

// decodeSection decodes node onto the matching field of target.
func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyRequires:
		return node.Decode(&target.Requires)
	case keyProfile:
		return node.Decode(&target.Profile)
	case keyJob:
		// fields is replaced as a whole, never merged element-wise.
		section := target.Job
		if hasKey(node, "fields") {
			section.Fields = nil
		}
		if err := node.Decode(&section); err != nil {
			return err
		}
		target.Job = section
		return nil
	case keyLookup:
		return node.Decode(&target.Lookup)
	case keyLogging:
		return node.Decode(&target.Logging)
	case keyMetrics:
		return node.Decode(&target.Metrics)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
