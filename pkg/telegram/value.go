package telegram

import (
	"regexp"
	"strconv"

	"smartmeter/pkg/types"
)

var (
	intPattern   = regexp.MustCompile(`^\d+$`)
	floatPattern = regexp.MustCompile(`^\d+\.\d+`)
)

// Coerce converts a raw field substring to an int, float or string value
// based on its lexical shape. The float match is a prefix test: trailing
// non-numeric characters after a valid decimal prefix are dropped.
func Coerce(raw string) types.Value {
	if intPattern.MatchString(raw) {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return types.IntValue(v)
		}
	}
	if m := floatPattern.FindString(raw); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return types.FloatValue(v)
		}
	}
	return types.StringValue(raw)
}
