package pdu

import (
	"fmt"
	"time"
)

// maxRelativeDuration is 63 weeks, the largest relative validity period
// the SMPP time string can express.
const maxRelativeDuration = 63 * 7 * 24 * time.Hour

// FormatAbsolute renders t as an absolute SMPP time string:
// YYMMDDhhmmsstnnp, where t is tenths-of-second, nn is the UTC offset in
// quarter-hours and p is '+' or '-'.
func FormatAbsolute(t time.Time) string {
	_, offset := t.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	quarterHours := offset / (15 * 60)
	tenths := t.Nanosecond() / 100000000
	return fmt.Sprintf("%02d%02d%02d%02d%02d%02d%d%02d%c",
		t.Year()%100, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		tenths, quarterHours, sign)
}

// FormatRelative renders d as a relative SMPP time string: YYMMDDhhmmss000R.
// d must not exceed 63 weeks.
func FormatRelative(d time.Duration) (string, error) {
	if d > maxRelativeDuration {
		return "", ErrRelativeTimeTooBig
	}
	if d < 0 {
		d = 0
	}
	totalDays := int(d.Hours() / 24)
	years := totalDays / 365
	rem := totalDays % 365
	months := rem / 30
	days := rem % 30

	secs := int(d.Seconds())
	hh := (secs / 3600) % 24
	mm := (secs / 60) % 60
	ss := secs % 60

	return fmt.Sprintf("%02d%02d%02d%02d%02d%02d000R", years, months, days, hh, mm, ss), nil
}

// ParseTime parses either form of the SMPP time string. relative reports
// whether the string was relative (true) or absolute (false).
func ParseTime(s string) (t time.Time, relative bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	if len(s) != 16 {
		return time.Time{}, false, ErrInvalidTime
	}
	var yy, mo, dd, hh, mi, ss, sub int
	if _, err := fmt.Sscanf(s[0:12], "%02d%02d%02d%02d%02d%02d", &yy, &mo, &dd, &hh, &mi, &ss); err != nil {
		return time.Time{}, false, ErrInvalidTime
	}
	if s[15] == 'R' {
		if _, err := fmt.Sscanf(s[12:15], "%03d", &sub); err != nil {
			return time.Time{}, false, ErrInvalidTime
		}
		d := time.Duration(yy)*365*24*time.Hour +
			time.Duration(mo)*30*24*time.Hour +
			time.Duration(dd)*24*time.Hour +
			time.Duration(hh)*time.Hour +
			time.Duration(mi)*time.Minute +
			time.Duration(ss)*time.Second
		return time.Time{}.Add(d), true, nil
	}

	var tenths, nn int
	sign := s[15]
	if _, err := fmt.Sscanf(s[12:13], "%d", &tenths); err != nil {
		return time.Time{}, false, ErrInvalidTime
	}
	if _, err := fmt.Sscanf(s[13:15], "%02d", &nn); err != nil {
		return time.Time{}, false, ErrInvalidTime
	}
	if sign != '+' && sign != '-' {
		return time.Time{}, false, ErrInvalidTime
	}
	offsetSeconds := nn * 15 * 60
	if sign == '-' {
		offsetSeconds = -offsetSeconds
	}
	loc := time.FixedZone("smpp", offsetSeconds)
	year := 2000 + yy
	parsed := time.Date(year, time.Month(mo), dd, hh, mi, ss, tenths*100000000, loc)
	return parsed, false, nil
}
