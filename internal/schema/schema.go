// Package schema validates the values of an env file against declared
// requirements, backfills defaults and converts values to Go types.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrValidation = errors.New("validation failed")

const ReasonMissing = "missing required key"

// ValidationError names the key a check failed for. Reason never quotes
// the value, so it is safe to show where values are hidden.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Store is the document a Spec validates. *envfile.File satisfies it.
type Store interface {
	ToMap() map[string]string
	Set(key, value string) error
}

// Spec declares the keys an env file must or may hold.
//
//	schema:
//	  required: [APP_KEY]
//	  optional: {APP_ENV: production}
//	  types: {PORT: int}
//	  rules: {PORT: {min: 1, max: 65535}}
//	  groups:
//	    DB_:
//	      required: [HOST]
type Spec struct {
	Required []string          `yaml:"required,omitempty"`
	Optional map[string]string `yaml:"optional,omitempty"`
	Types    map[string]Type   `yaml:"types,omitempty"`
	Rules    map[string]Rules  `yaml:"rules,omitempty"`
	Groups   map[string]*Spec  `yaml:"groups,omitempty"`
}

func (s *Spec) Empty() bool {
	return s == nil || (len(s.Required) == 0 && len(s.Optional) == 0 &&
		len(s.Types) == 0 && len(s.Rules) == 0 && len(s.Groups) == 0)
}

// Flatten returns a copy with every group folded in, its prefix prepended
// to each key.
func (s *Spec) Flatten() *Spec {
	out := &Spec{
		Optional: map[string]string{},
		Types:    map[string]Type{},
		Rules:    map[string]Rules{},
	}
	s.flattenInto(out, "")
	return out
}

func (s *Spec) flattenInto(out *Spec, prefix string) {
	if s == nil {
		return
	}
	for _, k := range s.Required {
		if !slices.Contains(out.Required, prefix+k) {
			out.Required = append(out.Required, prefix+k)
		}
	}
	for k, v := range s.Optional {
		out.Optional[prefix+k] = v
	}
	for k, v := range s.Types {
		out.Types[prefix+k] = v
	}
	for k, v := range s.Rules {
		out.Rules[prefix+k] = v
	}

	groups := make([]string, 0, len(s.Groups))
	for p := range s.Groups {
		groups = append(groups, p)
	}
	sort.Strings(groups)
	for _, p := range groups {
		s.Groups[p].flattenInto(out, prefix+p)
	}
}

// Keys returns every declared key: required keys in declaration order,
// then the keys only named by optional, types or rules, sorted.
func (s *Spec) Keys() []string {
	flat := s.Flatten()
	keys := append([]string{}, flat.Required...)

	rest := map[string]bool{}
	for k := range flat.Optional {
		rest[k] = true
	}
	for k := range flat.Types {
		rest[k] = true
	}
	for k := range flat.Rules {
		rest[k] = true
	}
	for _, k := range sortedKeys(rest) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Fill writes the default of every optional key missing from store and
// returns the keys it wrote.
func (s *Spec) Fill(store Store) ([]string, error) {
	flat := s.Flatten()
	present := store.ToMap()

	var filled []string
	for _, k := range sortedKeys(flat.Optional) {
		if _, ok := present[k]; ok {
			continue
		}
		if err := store.Set(k, flat.Optional[k]); err != nil {
			return filled, fmt.Errorf("set default for %s: %w", k, err)
		}
		filled = append(filled, k)
	}
	return filled, nil
}

// Validate backfills defaults through store, then checks that required
// keys exist and that every declared key present passes its rules and
// converts to its type. The result holds the converted values of the
// declared keys. All problems are reported together.
func (s *Spec) Validate(store Store) (map[string]any, error) {
	if _, err := s.Fill(store); err != nil {
		return nil, err
	}

	flat := s.Flatten()
	env := store.ToMap()

	var errs []error
	for _, k := range flat.Required {
		if _, ok := env[k]; !ok {
			errs = append(errs, &ValidationError{Key: k, Reason: ReasonMissing})
		}
	}

	result := make(map[string]any)
	for _, k := range s.Keys() {
		value, ok := env[k]
		if !ok {
			continue
		}

		if err := flat.Rules[k].check(k, value); err != nil {
			errs = append(errs, err)
			continue
		}

		typ, ok := flat.Types[k]
		if !ok {
			result[k] = value
			continue
		}
		cast, err := Cast(value, typ)
		if err != nil {
			errs = append(errs, &ValidationError{Key: k, Reason: fmt.Sprintf("not a valid %s", typ)})
			continue
		}
		result[k] = cast
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}

// Missing returns the required keys absent from store.
func (s *Spec) Missing(store Store) []string {
	env := store.ToMap()
	var missing []string
	for _, k := range s.Flatten().Required {
		if _, ok := env[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
