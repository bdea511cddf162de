package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerKey folds a header cell into the key used to match it against the
// expected columns:
//  1. drop format characters (the UTF-8 BOM, zero-width spaces)
//  2. strip accents (NFD → remove Mn → NFC)
//  3. trim, lowercase, spaces to underscores
func headerKey(s string) string {
	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	return strings.Join(strings.Fields(out), "_")
}

// columnIndex maps every wanted column to its position in header. Source
// headers are renamed through headerMap first. Missing columns are reported
// in wanted order.
func columnIndex(header, wanted []string, headerMap map[string]string) (map[string]int, []string) {
	mapped := make(map[string]string, len(headerMap))
	for from, to := range headerMap {
		mapped[headerKey(from)] = to
	}

	byKey := make(map[string]int, len(header))
	for i, h := range header {
		k := headerKey(h)
		if to, ok := mapped[k]; ok {
			k = headerKey(to)
		}
		if _, dup := byKey[k]; !dup {
			byKey[k] = i
		}
	}

	idx := make(map[string]int, len(wanted))
	var missing []string
	for _, w := range wanted {
		i, ok := byKey[headerKey(w)]
		if !ok {
			missing = append(missing, w)
			continue
		}
		idx[w] = i
	}
	return idx, missing
}
