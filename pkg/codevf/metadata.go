package codevf

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
)

var (
	metadataKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	jsonNumberPattern  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

// ValidateMetadata checks free-form task metadata and returns a copy.
//
// Keys must match ^[A-Za-z0-9_]+$. Values must be strings, booleans, integers
// or finite floats; nil, NaN, infinities and nested values are rejected. A nil
// map is returned as nil and an empty map as an empty copy.
func ValidateMetadata(metadata map[string]any) (map[string]any, error) {
	if metadata == nil {
		return nil, nil
	}

	validated := make(map[string]any, len(metadata))
	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		if !metadataKeyPattern.MatchString(key) {
			return nil, newLocalError(KindInvalidMetadata,
				fmt.Sprintf("metadata key %q must contain only letters, digits and underscores", key),
				map[string]any{"key": key})
		}
		value := metadata[key]
		if !isMetadataPrimitive(value) {
			return nil, newLocalError(KindInvalidMetadata,
				fmt.Sprintf("metadata value for %q must be a string, number or boolean, got %T", key, value),
				map[string]any{"key": key})
		}
		if !isFiniteNumber(value) {
			return nil, newLocalError(KindInvalidMetadata,
				fmt.Sprintf("metadata value for %q must be a finite number, got %v", key, value),
				map[string]any{"key": key})
		}
		validated[key] = value
	}

	return validated, nil
}

func isMetadataPrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// isFiniteNumber reports false for NaN, infinities and json.Number text that
// is not a JSON number literal. Non-numeric values pass.
func isFiniteNumber(v any) bool {
	switch n := v.(type) {
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case json.Number:
		return jsonNumberPattern.MatchString(string(n))
	default:
		return true
	}
}
