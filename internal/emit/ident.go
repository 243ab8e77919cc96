package emit

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Und, cases.NoLower)

// Ident converts an item or condition name to a CamelCase C identifier:
// chunks split at non-alphanumeric characters are title-cased and joined.
// Existing upper-case runs are preserved, so "task-delete" becomes
// "TaskDelete" and "NUMA-aware" becomes "NUMAAware".
func Ident(name string) string {
	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(titler.String(name[start:end]))
			start = -1
		}
	}
	for i, r := range name {
		alnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if alnum {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(name))
	return b.String()
}

// integerType returns the smallest fixed-width unsigned C type holding max.
func integerType(max int) string {
	switch {
	case max <= 0xff:
		return "uint8_t"
	case max <= 0xffff:
		return "uint16_t"
	case max <= 0xffffffff:
		return "uint32_t"
	}
	return "uint64_t"
}

// bitsFor returns the bit-field width needed for values in [0, max].
func bitsFor(max int) int {
	bits := 1
	for max > 1 {
		max >>= 1
		bits++
	}
	return bits
}
