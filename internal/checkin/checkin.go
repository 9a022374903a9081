// Package checkin parses free-text check-in replies of the form
// "<units> [note]".
package checkin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
)

var (
	// ErrNoUnits is returned when the reply does not start with a number.
	ErrNoUnits = fmt.Errorf("%w: reply must start with a number", common.ErrorValidation)
	// ErrTooMany is returned when the number does not fit daily_logs.units.
	ErrTooMany = fmt.Errorf("%w: unit count too large", common.ErrorValidation)
)

// MaxUnits is the largest count a check-in may record.
const MaxUnits = math.MaxInt32

// Result is a parsed check-in. Note is nil when nothing follows the number.
type Result struct {
	Units int
	Note  *string
}

// Parse takes the leading run of decimal digits as the unit count and the
// trimmed rest, if any, as a note.
func Parse(text string) (Result, error) {
	text = strings.TrimSpace(text)

	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return Result{}, ErrNoUnits
	}

	units, err := strconv.ParseInt(text[:end], 10, 64)
	if err != nil || units > MaxUnits {
		return Result{}, ErrTooMany
	}

	res := Result{Units: int(units)}
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		res.Note = &rest
	}
	return res, nil
}
