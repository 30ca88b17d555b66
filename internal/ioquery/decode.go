package ioquery

import (
	"strconv"
	"strings"
)

// ParseFloatArray decodes a string-encoded numeric array column such
// as "[1.5, 2.0, -0.25]" into a float32 slice. It accepts bracket,
// parenthesis and brace delimiters and requires every element to be a
// plain decimal number: this is a strict parser, never a general
// expression evaluator.
func ParseFloatArray(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.Trim(trimmed, "[](){}")
	trimmed = strings.TrimSpace(trimmed)

	if trimmed == "" {
		return []float32{}, nil
	}

	parts := strings.Split(trimmed, ",")
	out := make([]float32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, &ArrayElementError{Index: i, Token: part, Err: err}
		}
		out[i] = float32(v)
	}
	return out, nil
}
