package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type names a conversion applied by Cast.
type Type string

const (
	TypeString   Type = "string"
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeArray    Type = "array"
	TypeJSON     Type = "json"
	TypeDuration Type = "duration"
)

// Cast converts value to typ. Arrays are comma separated with each item
// trimmed; an empty value is an empty array.
func Cast(value string, typ Type) (any, error) {
	switch Type(strings.TrimSpace(string(typ))) {
	case TypeString, "":
		return value, nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to int", value)
		}
		return n, nil
	case TypeFloat:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to float", value)
		}
		return n, nil
	case TypeBool:
		return castBool(value)
	case TypeArray:
		if value == "" {
			return []string{}, nil
		}
		parts := strings.Split(value, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts, nil
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("cannot cast %q to json: %v", value, err)
		}
		return v, nil
	case TypeDuration:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to duration", value)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown cast type %q", typ)
}

func castBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("cannot cast %q to bool", value)
}
