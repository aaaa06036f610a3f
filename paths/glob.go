package paths

import (
	"regexp"
	"strings"
)

// Glob translates a separator aware wildcard pattern into an expression for
// Match. Between separators, a component of "+" matches any one component, a
// final "#" matches whatever components follow, including none, and "*"
// inside a component matches any run of bytes that are not the separator.
// Everything else is literal.
func Glob(pattern st, sep byte) st {
	s := st([]byte{sep})
	one := `[^` + regexp.QuoteMeta(s) + `]*`
	parts := strings.Split(pattern, s)
	var b strings.Builder
	for i, part := range parts {
		last := i == len(parts)-1
		switch {
		case part == "#" && last:
			if i == 0 {
				b.WriteString(`(?s:.*)`)
			} else {
				b.WriteString(`(?:` + regexp.QuoteMeta(s) + `(?s:.*))?`)
			}
			continue
		case i > 0:
			b.WriteString(regexp.QuoteMeta(s))
		}
		if part == "+" {
			b.WriteString(one)
			continue
		}
		for j, lit := range strings.Split(part, "*") {
			if j > 0 {
				b.WriteString(one)
			}
			b.WriteString(regexp.QuoteMeta(lit))
		}
	}
	return b.String()
}
