package domain

import "time"

// DateLayout is the wire and storage layout of every calendar date.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Invalidf("date must use YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// ValidateDate rejects anything that is not a real calendar date.
func ValidateDate(s string) error {
	_, err := ParseDate(s)
	return err
}

// FormatDate renders t as YYYY-MM-DD in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}
