package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClock parses [h:]mm:ss<sep>fraction. Hours may be omitted only when
// hoursOptional is set. Fractions longer than milliseconds are truncated.
func parseClock(
	value string,
	seps string,
	hoursOptional bool,
) (time.Duration, error) {
	value = strings.TrimSpace(value)
	idx := strings.LastIndexAny(value, seps)
	if idx == -1 {
		return 0, fmt.Errorf("invalid timestamp %q: missing fraction", value)
	}
	clock, frac := value[:idx], value[idx+1:]

	parts := strings.Split(clock, ":")
	var hours, minutes, seconds int
	var err error
	switch {
	case len(parts) == 3:
		if hours, err = parseDigits(parts[0], 1, 0); err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: hours", value)
		}
		parts = parts[1:]
	case len(parts) == 2 && hoursOptional:
	default:
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	if minutes, err = parseDigits(parts[0], 2, 2); err != nil || minutes > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: minutes", value)
	}
	if seconds, err = parseDigits(parts[1], 2, 2); err != nil || seconds > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: seconds", value)
	}

	millis, err := parseFraction(frac)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		millis, nil
}

// parseDigits accepts only ASCII digits, between minLen and maxLen of them
// (maxLen 0 means unbounded).
func parseDigits(s string, minLen, maxLen int) (int, error) {
	if len(s) < minLen || (maxLen > 0 && len(s) > maxLen) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}
	return strconv.Atoi(s)
}

// parseFraction converts the digits after the decimal separator into
// milliseconds, truncating anything past the third digit.
func parseFraction(frac string) (time.Duration, error) {
	if frac == "" {
		return 0, fmt.Errorf("empty fraction")
	}
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return 0, fmt.Errorf("invalid fraction %q", frac)
		}
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	frac += strings.Repeat("0", 3-len(frac))
	ms, err := strconv.Atoi(frac)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// truncateMillis drops sub-millisecond precision.
func truncateMillis(d time.Duration) time.Duration {
	return d.Truncate(time.Millisecond)
}

func clockParts(d time.Duration) (hours, minutes, seconds, millis int) {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours = int(ms / 3_600_000)
	minutes = int(ms/60_000) % 60
	seconds = int(ms/1000) % 60
	millis = int(ms % 1000)
	return
}

func formatSRTTime(d time.Duration) string {
	h, m, s, ms := clockParts(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(d time.Duration) string {
	h, m, s, ms := clockParts(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(d time.Duration) string {
	h, m, s, ms := clockParts(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}
