package driver

import (
	"fmt"
	"strings"
)

// SplitArgs splits a per-phase extra-argument string into arguments.
// Splitting follows shell-like rules: spaces separate arguments, single
// or double quotes group, a backslash escapes the next character both
// inside and outside quotes. An unterminated quote or a trailing
// backslash is an error.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune // 0 when no quote is open
		escaped bool
		started bool
	)

	commit := func() {
		if started {
			args = append(args, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range s {
		if escaped {
			cur.WriteRune(r)
			started = true
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
			started = true
		case '\'', '"':
			switch quote {
			case 0:
				quote = r
				started = true
			case r:
				quote = 0
			default:
				cur.WriteRune(r)
			}
		case ' ', '\t':
			if quote != 0 {
				cur.WriteRune(r)
				continue
			}
			commit()
		default:
			cur.WriteRune(r)
			started = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("trailing backslash in %q", s)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in %q", quote, s)
	}
	commit()
	return args, nil
}
