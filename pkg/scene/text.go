package scene

import (
	"iter"
	"strings"
)

// Lines returns the logical lines of data: split on CR, LF or NUL,
// trimmed of spaces, with empty lines and comments dropped.
// A NUL inside a line only ends that line; a NUL where a line would
// start ends the input.
func Lines(data []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range numberedLines(data) {
			if !yield(line) {
				return
			}
		}
	}
}

// numberedLines is Lines with the 1-based physical line number of each line.
// A CRLF pair counts as one line break.
func numberedLines(data []byte) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		lineNo := 1
		start := 0
		for i := 0; i <= len(data); i++ {
			if i < len(data) && !isLineBreak(data[i]) {
				continue
			}
			if i < len(data) && data[i] == 0 && i == start {
				return
			}
			if i > start {
				line := Trim(string(data[start:i]))
				if !isComment(line) && !yield(lineNo, line) {
					return
				}
			}
			if i < len(data) && endsPhysicalLine(data, i) {
				lineNo++
			}
			start = i + 1
		}
	}
}

func isLineBreak(c byte) bool {
	return c == '\r' || c == '\n' || c == 0
}

func endsPhysicalLine(data []byte, i int) bool {
	switch data[i] {
	case '\n':
		return true
	case '\r':
		return i+1 >= len(data) || data[i+1] != '\n'
	}
	return false
}

// isComment reports whether a trimmed line is a "//" comment.
// A lone "/" is a broken comment and is dropped too.
func isComment(line string) bool {
	return line == "/" || strings.HasPrefix(line, "//")
}

// Trim removes leading and trailing spaces. Tabs are kept.
// A string made only of spaces is returned unchanged.
func Trim(s string) string {
	start := 0
	for start < len(s) && s[start] == ' ' {
		start++
	}
	if start == len(s) {
		return s
	}
	end := len(s)
	for s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

// Split cuts s at every delim and returns the non-empty segments in order.
// Segments are trimmed unless keepSpaces is set.
func Split(s string, delim byte, keepSpaces bool) []string {
	var parts []string
	for _, seg := range strings.Split(s, string(delim)) {
		if seg == "" {
			continue
		}
		if !keepSpaces {
			seg = Trim(seg)
		}
		parts = append(parts, seg)
	}
	return parts
}

// splitKeyValue splits a "key=value" line. Only the first two segments are
// used, so "a=b=c" yields ("a", "b") and "a==b" yields ("a", "b").
func splitKeyValue(line string) (key, value string, ok bool) {
	parts := Split(line, '=', false)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
