package validation

import (
	"fmt"
	"strconv"
	"time"
)

const (
	MaxMRNLen         = 50
	MaxPersonNameLen  = 100
	MaxDescriptionLen = 1000

	DefaultLimit = 100
	MaxLimit     = 1000
)

// ValidateMRN checks a medical record number.
func ValidateMRN(mrn string) error {
	return validateText("mrn", mrn, 1, MaxMRNLen)
}

// ValidatePersonName checks a first or last name.
func ValidatePersonName(field, name string) error {
	return validateText(field, name, 1, MaxPersonNameLen)
}

// ValidateDescription allows an empty description.
func ValidateDescription(desc string) error {
	return validateText("description", desc, 0, MaxDescriptionLen)
}

// ValidateNotFuture rejects calendar dates after today's date in UTC.
func ValidateNotFuture(field string, d, now time.Time) error {
	if d.IsZero() {
		return fmt.Errorf("%s is required", field)
	}

	y, m, day := now.UTC().Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)

	dy, dm, dd := d.Date()
	if time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).After(today) {
		return fmt.Errorf("%s cannot be in the future", field)
	}

	return nil
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}

// ParsePagination reads skip and limit query values. Empty values take the
// defaults: skip 0, limit 100.
func ParsePagination(skipRaw, limitRaw string) (skip, limit int, err error) {
	limit = DefaultLimit

	if skipRaw != "" {
		skip, err = strconv.Atoi(skipRaw)
		if err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("skip must be a non-negative integer")
		}
	}

	if limitRaw != "" {
		limit, err = strconv.Atoi(limitRaw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, fmt.Errorf("limit must be an integer between 1 and %d", MaxLimit)
		}
	}

	return skip, limit, nil
}
