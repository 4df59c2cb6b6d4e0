package shared

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"studiodesk/pkg/errors"
)

// Args are the decoded JSON arguments of one tool call
type Args map[string]interface{}

// ParseArgs decodes the model's argument string. Empty input yields empty Args.
func ParseArgs(raw string) (Args, error) {
	args := Args{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "arguments are not a JSON object: %v", err)
	}
	return args, nil
}

// String returns a required, non-blank string argument.
func (a Args) String(name string) (string, error) {
	v := a.OptionalString(name)
	if v == "" {
		return "", a.Missing(name)
	}
	return v, nil
}

// OptionalString returns the trimmed string argument or "" when absent.
// Numbers are accepted and formatted, since models sometimes send ids unquoted.
func (a Args) OptionalString(name string) string {
	switch v := a[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float returns a numeric argument, or nil when absent. Numeric strings are accepted.
func (a Args) Float(name string) (*float64, error) {
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, errors.NewValidationError(name, "must be a number", v)
		}
		return &f, nil
	default:
		return nil, errors.NewValidationError(name, "must be a number", v)
	}
}

// Date parses an optional YYYY-MM-DD or RFC 3339 argument.
func (a Args) Date(name string) (*time.Time, error) {
	raw := a.OptionalString(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.NewValidationError(name, "must be a date (YYYY-MM-DD)", raw)
}

// StringList returns a list of non-blank strings, or nil when absent.
// A single string is treated as a one-element list.
func (a Args) StringList(name string) ([]string, error) {
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}, nil
		}
		return []string{}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.NewValidationError(name, "must be a list of strings", v)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, errors.NewValidationError(name, "must be a list of strings", v)
	}
}

// Object returns a nested object argument. A JSON-encoded string is decoded too.
func (a Args) Object(name string) (Args, error) {
	switch v := a[name].(type) {
	case map[string]interface{}:
		return Args(v), nil
	case string:
		nested, err := ParseArgs(v)
		if err != nil {
			return nil, errors.NewValidationError(name, "must be an object", v)
		}
		return nested, nil
	case nil:
		return nil, a.Missing(name)
	default:
		return nil, errors.NewValidationError(name, "must be an object", v)
	}
}

// Missing returns the validation error for an absent required argument.
func (a Args) Missing(name string) error {
	return errors.NewValidationError(name, "is required", nil)
}
