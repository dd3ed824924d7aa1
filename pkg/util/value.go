package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrValueFormat reports a number that could not be parsed, with or
// without an engineering suffix.
var ErrValueFormat = fmt.Errorf("invalid value format")

// Engineering suffixes. "meg" must be looked up before the single "m".
var unitMap = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

// Optional trailing unit letters (1kohm, 5V, 10us) are accepted and ignored.
var valueRe = regexp.MustCompile(`(?i)^([-+]?(?:\d+\.?\d*|\.\d+)(?:e[-+]?\d+)?)(meg|[tgkmunpf])?(ohm|hz|[vasfh])?$`)

// ParseValue parses a SPICE value with an optional engineering suffix.
// 1k -> 1000, 4.7meg -> 4.7e6, 100n -> 1e-7.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrValueFormat, val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrValueFormat, val)
	}

	if matches[2] != "" {
		num *= unitMap[strings.ToLower(matches[2])]
	}
	return num, nil
}

// Suffixes ordered from largest factor down, for formatting.
var suffixGrid = []struct {
	factor float64
	suffix string
}{
	{1e12, "t"},
	{1e9, "g"},
	{1e6, "meg"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatEngineering renders x with the largest suffix whose mantissa lands
// in [1, 1000). ParseValue(FormatEngineering(x)) recovers x to within 1 ulp
// for values on the suffix grid.
func FormatEngineering(x float64) string {
	if x == 0 {
		return "0"
	}
	abs := math.Abs(x)
	for _, s := range suffixGrid {
		if abs >= s.factor && abs < s.factor*1e3 {
			return strconv.FormatFloat(x/s.factor, 'g', -1, 64) + s.suffix
		}
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// FormatValueFactor renders a value with a metric prefix and unit for
// human-readable result tables.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1 || absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}
