package shared

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Render encodes a tool result as the text handed back to the model.
// Strings pass through; everything else is JSON.
func Render(result interface{}) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

// ErrorObject is the {"error": "..."} shape used for sentinel results such as a missing record.
func ErrorObject(message string) map[string]string {
	return map[string]string{"error": message}
}

// Money formats an amount for display, e.g. 1234.5 -> "$1,234.50".
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", amount)
}
