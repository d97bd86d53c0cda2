package subtitle

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

var ttOffsetTimeRegex = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(h|ms|m|s|f|t)$`)

// parseTTTime converts a TTML time expression to whole milliseconds:
// clock time (hh:mm:ss.fff or hh:mm:ss:ff.sub) or offset time with one of
// the h, m, s, ms, f, t metrics.
func parseTTTime(expr string, p ttParams) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if strings.Contains(expr, ":") {
		return parseTTClockTime(expr, p)
	}

	m := ttOffsetTimeRegex.FindStringSubmatch(expr)
	if m == nil {
		return 0, fmt.Errorf("invalid time expression %q", expr)
	}

	// milliseconds per unit as a fraction num/den
	var num, den int64
	switch m[3] {
	case "h":
		num, den = int64(time.Hour/time.Millisecond), 1
	case "m":
		num, den = int64(time.Minute/time.Millisecond), 1
	case "s":
		num, den = 1000, 1
	case "ms":
		num, den = 1, 1
	case "f":
		num, den = 1000*p.rateDen, p.frameRate*p.rateNum
	case "t":
		num, den = 1000, p.tickRate
	}
	return scaleDecimal(m[1], m[2], num, den), nil
}

func parseTTClockTime(expr string, p ttParams) (time.Duration, error) {
	parts := strings.Split(expr, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return 0, fmt.Errorf("invalid clock time %q", expr)
	}

	hours, err := parseDigits(parts[0], 2, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: hours", expr)
	}
	minutes, err := parseDigits(parts[1], 2, 2)
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q: minutes", expr)
	}

	secText, fracText, hasFrac := strings.Cut(parts[2], ".")
	seconds, err := parseDigits(secText, 2, 2)
	if err != nil || seconds > 60 {
		return 0, fmt.Errorf("invalid clock time %q: seconds", expr)
	}

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second

	if len(parts) == 3 {
		if hasFrac {
			frac, err := parseFraction(fracText)
			if err != nil {
				return 0, fmt.Errorf("invalid clock time %q: %w", expr, err)
			}
			total += frac
		}
		return total, nil
	}

	// hh:mm:ss:frames[.subframes]
	if hasFrac {
		return 0, fmt.Errorf("invalid clock time %q: fractional seconds with frames", expr)
	}
	frameText, subText, hasSub := strings.Cut(parts[3], ".")
	frames, err := parseDigits(frameText, 1, 0)
	if err != nil || int64(frames) >= p.frameRate {
		return 0, fmt.Errorf("invalid clock time %q: frames", expr)
	}
	sub := 0
	if hasSub {
		sub, err = parseDigits(subText, 1, 0)
		if err != nil || int64(sub) >= p.subFrameRate {
			return 0, fmt.Errorf("invalid clock time %q: sub-frames", expr)
		}
	}

	// (frames*subFrameRate + sub) sub-frames, each lasting
	// rateDen / (frameRate*rateNum*subFrameRate) seconds
	subFrames := int64(frames)*p.subFrameRate + int64(sub)
	ms := new(big.Int).Mul(
		big.NewInt(subFrames),
		big.NewInt(1000*p.rateDen),
	)
	ms.Quo(ms, big.NewInt(p.frameRate*p.rateNum*p.subFrameRate))
	return total + time.Duration(ms.Int64())*time.Millisecond, nil
}

// scaleDecimal computes floor(intPart.fracPart * num / den) milliseconds.
func scaleDecimal(intPart, fracPart string, num, den int64) time.Duration {
	value, _ := new(big.Int).SetString(intPart+fracPart, 10)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)

	ms := value.Mul(value, big.NewInt(num))
	ms.Quo(ms, scale.Mul(scale, big.NewInt(den)))
	return time.Duration(ms.Int64()) * time.Millisecond
}
