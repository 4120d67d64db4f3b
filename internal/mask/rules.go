package mask

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

func defaultRules() []Rule {
	return []Rule{
		&URLRule{},
		&HostnameRule{},
		&BooleanRule{},
		&NumberRule{},
		&WellKnownRule{},
	}
}

// URLRule accepts URLs without credentials.
type URLRule struct{}

func (r *URLRule) Plain(key, value string) bool {
	if !strings.Contains(value, "://") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.User != nil {
		_, hasPassword := u.User.Password()
		if u.User.Username() != "" || hasPassword {
			return false
		}
	}
	return true
}

type HostnameRule struct{}

var localhostPattern = regexp.MustCompile(`(?i)^(localhost|127\.0\.0\.1|::1|0\.0\.0\.0)$`)

func (r *HostnameRule) Plain(key, value string) bool {
	return localhostPattern.MatchString(value)
}

type BooleanRule struct{}

func (r *BooleanRule) Plain(key, value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "on", "off":
		return true
	}
	return false
}

type NumberRule struct{}

func (r *NumberRule) Plain(key, value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// WellKnownRule accepts the usual values of common settings such as
// APP_ENV or LOG_LEVEL.
type WellKnownRule struct{}

var wellKnown = map[string][]string{
	"APP_ENV":   {"local", "development", "dev", "staging", "production", "prod", "test", "testing"},
	"NODE_ENV":  {"development", "production", "test"},
	"GO_ENV":    {"development", "production", "test"},
	"LOG_LEVEL": {"debug", "info", "warn", "warning", "error", "verbose", "trace"},
	"HOST":      {"localhost", "127.0.0.1", "::1", "0.0.0.0"},
	"TZ":        {"utc", "etc/utc"},
}

func (r *WellKnownRule) Plain(key, value string) bool {
	allowed, ok := wellKnown[strings.ToUpper(key)]
	if !ok {
		return false
	}
	return slices.Contains(allowed, strings.ToLower(strings.TrimSpace(value)))
}
