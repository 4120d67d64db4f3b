package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Rules constrain a single value. Unset fields are not checked.
type Rules struct {
	Min     *float64 `yaml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty"`
	In      []string `yaml:"in,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	MinLen  *int     `yaml:"min_len,omitempty"`
	MaxLen  *int     `yaml:"max_len,omitempty"`
}

func (r Rules) check(key, value string) error {
	if r.Min != nil || r.Max != nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return &ValidationError{Key: key, Reason: "is not a number"}
		}
		if r.Min != nil && n < *r.Min {
			return &ValidationError{Key: key, Reason: fmt.Sprintf("must be >= %v", *r.Min)}
		}
		if r.Max != nil && n > *r.Max {
			return &ValidationError{Key: key, Reason: fmt.Sprintf("must be <= %v", *r.Max)}
		}
	}

	if len(r.In) > 0 && !slices.Contains(r.In, value) {
		return &ValidationError{Key: key, Reason: "must be one of: " + strings.Join(r.In, ", ")}
	}

	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return &ValidationError{Key: key, Reason: fmt.Sprintf("bad pattern %q: %v", r.Pattern, err)}
		}
		if !re.MatchString(value) {
			return &ValidationError{Key: key, Reason: "does not match pattern " + r.Pattern}
		}
	}

	n := len(value)
	if r.MinLen != nil && n < *r.MinLen {
		return &ValidationError{Key: key, Reason: fmt.Sprintf("must be at least %d characters", *r.MinLen)}
	}
	if r.MaxLen != nil && n > *r.MaxLen {
		return &ValidationError{Key: key, Reason: fmt.Sprintf("must be at most %d characters", *r.MaxLen)}
	}

	return nil
}
