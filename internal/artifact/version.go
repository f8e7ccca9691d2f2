package artifact

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateStampLayoutConstant         = "20060102"
	invalidDateStampMessageConstant = "invalid date stamp %q"
)

// DateStamp is a day-granular version in YYYYMMDD form.
type DateStamp string

// ParseDateStamp validates text as a YYYYMMDD date stamp.
func ParseDateStamp(text string) (DateStamp, error) {
	trimmed := strings.TrimSpace(text)
	if _, parseError := time.Parse(dateStampLayoutConstant, trimmed); parseError != nil {
		return "", fmt.Errorf(invalidDateStampMessageConstant, trimmed)
	}
	return DateStamp(trimmed), nil
}

// DateStampFromTime truncates the timestamp to its calendar day.
func DateStampFromTime(timestamp time.Time) DateStamp {
	return DateStamp(timestamp.Format(dateStampLayoutConstant))
}

// Time returns the midnight UTC instant of the stamp.
func (stamp DateStamp) Time() time.Time {
	parsed, parseError := time.Parse(dateStampLayoutConstant, string(stamp))
	if parseError != nil {
		return time.Time{}
	}
	return parsed
}

// Compare orders two stamps as dates, returning -1, 0 or 1.
func (stamp DateStamp) Compare(other DateStamp) int {
	return stamp.Time().Compare(other.Time())
}

// String returns the YYYYMMDD text.
func (stamp DateStamp) String() string {
	return string(stamp)
}
