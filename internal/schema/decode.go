package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Decode fills the struct target points to from values, usually the
// result of Validate. A field matches a key through its `env` tag or, when
// untagged, by name ignoring case and underscores, so DBHost matches
// DB_HOST. Every field must be matched.
func Decode(values map[string]any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "env",
		WeaklyTypedInput: true,
		ErrorUnset:       true,
		MatchName:        matchName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decode %T: %w", target, err)
	}
	return nil
}

func matchName(mapKey, fieldName string) bool {
	return normalizeName(mapKey) == normalizeName(fieldName)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
