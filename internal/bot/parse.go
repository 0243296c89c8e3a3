package bot

import (
	"strings"
	"unicode"
)

// ParseTags turns command arguments into the comma-separated tag list the
// feed expects. Tags may be separated by spaces, commas or both.
func ParseTags(args string) string {
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return strings.Join(fields, ",")
}
