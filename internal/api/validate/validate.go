package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// profileKeyRx covers "global", guest_xxxxxxxx and user ids.
var profileKeyRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var countryRx = regexp.MustCompile(`^[A-Za-z]{2}$`)

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ProfileKey validates a profile or owner key.
func ProfileKey(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !profileKeyRx.MatchString(v) {
		return fmt.Errorf("%s must be 1-64 letters, digits, underscore or hyphen", field)
	}
	return nil
}

// Kind parses a snapshot kind.
func Kind(v string) (model.SnapshotKind, error) {
	k := model.SnapshotKind(v)
	if !k.Valid() {
		return "", fmt.Errorf("kind must be planner or favorites")
	}
	return k, nil
}

// Date parses a YYYY-MM-DD value.
func Date(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

// DateRange parses an inclusive range of at most maxDays calendar days.
func DateRange(from, to string, maxDays int) (time.Time, time.Time, error) {
	f, err := Date("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := Date("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not be before from")
	}
	if days := int(t.Sub(f).Hours()/24) + 1; maxDays > 0 && days > maxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("date range of %d days exceeds %d", days, maxDays)
	}
	return f, t, nil
}

func Scheme(v string) (model.Scheme, error) {
	s, err := model.ParseScheme(v)
	if err != nil {
		return "", fmt.Errorf("scheme must be one of time, experience, value, lowCarbon")
	}
	return s, nil
}

// Country validates an ISO 3166-1 alpha-2 code.
func Country(v string) (string, error) {
	if !countryRx.MatchString(v) {
		return "", fmt.Errorf("country must be a two-letter code")
	}
	return strings.ToUpper(v), nil
}

// Year parses a four-digit year; empty means def.
func Year(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1900 || y > 2200 {
		return 0, fmt.Errorf("year must be between 1900 and 2200")
	}
	return y, nil
}
