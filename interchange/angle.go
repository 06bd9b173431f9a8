package interchange

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// anglePattern matches one angle literal inside a gate line: a number or a pi expression.
// Examples: "1.5707", "1.", ".5", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const anglePattern = `-?(?:\d*\.?\d*\s*\*?\s*pi(?:\s*/\s*\d+\.?\d*)?|(?:\d+\.?\d*|\.\d+)(?:[eE][+\-]?\d+)?)`

// piExprRegex splits a pi expression into sign, coefficient and denominator.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseAngle parses an angle in radians.
//
// Supported forms:
//   - plain numbers: "1.5707", "-0.5", "3e-2"
//   - pi: "pi", "PI"
//   - fractions and multiples: "pi/2", "2pi", "2*pi", "3*pi/4"
//   - a leading minus on any of the above
func ParseAngle(s string) (float64, error) {
	expr := strings.TrimSpace(s)
	if expr == "" {
		return 0, fmt.Errorf("%w: empty expression", ErrBadAngle)
	}
	if v, err := strconv.ParseFloat(expr, 64); err == nil {
		return v, nil
	}

	m := piExprRegex.FindStringSubmatch(strings.ToLower(expr))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAngle, s)
	}

	v := math.Pi
	if m[2] != "" {
		coeff, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: coefficient %q", ErrBadAngle, m[2])
		}
		v *= coeff
	}
	if m[3] != "" {
		denom, err := strconv.ParseFloat(m[3], 64)
		if err != nil || denom == 0 {
			return 0, fmt.Errorf("%w: denominator %q", ErrBadAngle, m[3])
		}
		v /= denom
	}
	if m[1] == "-" {
		v = -v
	}
	return v, nil
}

// piForms are the fractions FormatAngle writes symbolically.
var piForms = []struct {
	value   float64
	display string
}{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
}

// FormatAngle writes v using pi notation for common fractions and the
// shortest round-tripping decimal otherwise.
func FormatAngle(v float64) string {
	for _, pf := range piForms {
		if math.Abs(v-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(v+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
