// Package builtin contains the cell-level transforms applied while reading
// sales rows.
package builtin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidNumber is returned by Coerce.Value when an int or float column
// holds a value that does not parse.
var ErrInvalidNumber = errors.New("invalid number")

// Coerce converts raw CSV cells into typed values.
type Coerce struct {
	Types  map[string]string // column -> one of: int, float, date, string
	Layout string            // date layout
}

// Value converts s according to the declared type of column.
//
//   - int:    int, or ErrInvalidNumber
//   - float:  float64, or ErrInvalidNumber
//   - date:   *time.Time, nil when s does not match Layout (never an error)
//   - other:  s unchanged
func (c Coerce) Value(column, s string) (any, error) {
	switch c.Types[column] {
	case "int":
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidNumber, s)
		}
		return i, nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidNumber, s)
		}
		return f, nil
	case "date":
		return ParseDate(c.Layout, s), nil
	default:
		return s, nil
	}
}

// ParseDate parses s under layout. Blank input or a value that does not match
// the layout yields nil.
func ParseDate(layout, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return &t
}
