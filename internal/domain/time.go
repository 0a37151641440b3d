package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMinutes converts an "HH:MM" wall-clock string to minutes after
// midnight.
func ParseMinutes(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, value)
	}
	return hours*60 + minutes, nil
}

// FormatMinutes renders minutes after midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindow splits an "HH:MM-HH:MM" range into start and end minutes.
func ParseWindow(window string) (start, end int, err error) {
	parts := strings.SplitN(strings.TrimSpace(window), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: window %q must be HH:MM-HH:MM", ErrValidation, window)
	}
	start, err = ParseMinutes(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseMinutes(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseDate validates a "2006-01-02" calendar date and returns it.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, value)
	}
	return parsed, nil
}
