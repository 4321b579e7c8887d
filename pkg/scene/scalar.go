package scene

import (
	"strconv"
	"strings"

	"github.com/Faultbox/scenefile/pkg/math"
)

// ParseFloat reads the longest decimal number at the start of s, after any
// leading whitespace. Text with no numeric prefix yields 0.
func ParseFloat(s string) float32 {
	f, _ := parseFloat(s)
	return f
}

// parseFloat is ParseFloat that also reports whether all of s was consumed.
func parseFloat(s string) (float32, bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	n := floatPrefix(s)
	if n == 0 {
		return 0, false
	}
	// Out-of-range values come back as ±Inf or 0 with an error; keep them.
	f, _ := strconv.ParseFloat(s[:n], 32)
	return float32(f), n == len(s)
}

// floatPrefix returns the length of the decimal literal at the start of s:
// [sign] digits [. digits] [e|E [sign] digits], with at least one digit in
// the mantissa.
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	return end
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseVector parses "x,y,z" into out. If s does not have exactly three
// comma-separated components, out is left untouched and false is returned.
func ParseVector(s string, out *math.Vec3) bool {
	parts := Split(s, ',', false)
	if len(parts) != 3 {
		return false
	}
	out.X = ParseFloat(parts[0])
	out.Y = ParseFloat(parts[1])
	out.Z = ParseFloat(parts[2])
	return true
}

// ParseBool reports whether s is one of "true", "yes" or "1".
// Anything else, including other capitalisations, is false.
func ParseBool(s string) bool {
	switch s {
	case "true", "yes", "1":
		return true
	}
	return false
}
