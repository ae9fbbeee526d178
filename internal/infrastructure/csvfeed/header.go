package csvfeed

import "strings"

// ResolveHeader maps a logical column onto one of the file's actual headers.
// Headers are expected lowercased and trimmed. The first pass looks for an
// exact match in candidate priority order; only if that fails does a second
// pass scan headers in file order for one containing any candidate as a
// substring. Returns false when neither pass matches.
func ResolveHeader(headers []string, candidates []string) (string, bool) {
	for _, c := range candidates {
		c = strings.ToLower(c)
		for _, h := range headers {
			if h == c {
				return h, true
			}
		}
	}
	for _, h := range headers {
		for _, c := range candidates {
			if strings.Contains(h, strings.ToLower(c)) {
				return h, true
			}
		}
	}
	return "", false
}
