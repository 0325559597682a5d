package validate

import (
	"fmt"
	"time"
)

// Layouts the vendor's "created" field shows up in: UTC with a Z suffix
// and anywhere from zero to six fractional digits, occasionally without
// the suffix at all.
var createdLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
}

// ParseAPITime parses a vendor timestamp into naive UTC for comparison
// against PIREP filed dates (which are naive UTC already).
func ParseAPITime(s string) (time.Time, error) {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
