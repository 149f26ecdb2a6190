package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// toASCII folds s to its closest ASCII representation by decomposing
// accented characters (NFD) and dropping everything that doesn't survive,
// collapsing whitespace along the way. "São Paulo" -> "Sao Paulo".
func toASCII(s string) string {
	t := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// isASCIIPunct reports whether r is one of the 32 ASCII punctuation code
// points. Punctuation characters don't count toward the length threshold
// that decides standardize's case policy, and several of them act as word
// boundaries for title-casing.
func isASCIIPunct(r rune) bool {
	switch r {
	case '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-',
		'.', '/', ':', ';', '<', '=', '>', '?', '@', '[', '\\', ']', '^',
		'_', '`', '{', '|', '}', '~':
		return true
	}
	return false
}

func isWordBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '.' || r == ',' || r == '-' || r == '/' || r == '(' || r == ')'
}

// titleCase upper-cases the first letter of every word and lower-cases
// the rest, treating whitespace and the punctuation in isWordBreak as
// word boundaries. "washington, d.c." -> "Washington, D.C.".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	atWordStart := true
	for _, r := range s {
		switch {
		case isWordBreak(r):
			atWordStart = true
			b.WriteRune(r)
		case atWordStart:
			b.WriteRune(unicode.ToUpper(r))
			atWordStart = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// standardize normalizes a raw name into the canonical form used as an
// index key: ASCII-folded always, and title-cased unless the name is
// short enough that case carries meaning (abbreviations like "US", "EU",
// "Usa" must not collide with their long-form counterparts).
//
// Names with more than three non-punctuation characters are
// case-folded; names at or below that threshold are returned with their
// original casing preserved (after ASCII folding).
func standardize(raw string) string {
	ascii := toASCII(raw)
	if ascii == "" {
		return ""
	}

	count := 0
	for _, r := range ascii {
		if !isASCIIPunct(r) {
			count++
		}
	}

	if count > 3 {
		return titleCase(ascii)
	}
	return ascii
}

var (
	apostropheReplacer = strings.NewReplacer("'", "", "’", "")
)

// altPuncNames generates punctuation and prefix/suffix variants of name
// that should resolve to the same location. Callers deduplicate and pass
// each result back through standardize before indexing. Order is not
// significant and results may repeat.
func altPuncNames(name string) []string {
	var variants []string

	if stripped := apostropheReplacer.Replace(name); stripped != name {
		variants = append(variants, stripped)
	}

	if hyphenated := strings.ReplaceAll(name, "-", " "); hyphenated != name {
		variants = append(variants, hyphenated)
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "st "):
		variants = append(variants, "St. "+name[len("st "):])
	case strings.HasPrefix(lower, "saint "):
		variants = append(variants, "St. "+name[len("saint "):])
	case strings.HasPrefix(lower, "the "):
		variants = append(variants, name[len("the "):])
	case strings.HasPrefix(lower, "city of "):
		variants = append(variants, name[len("city of "):])
	}

	if idx := strings.Index(name, "("); idx > 0 {
		variants = append(variants, strings.TrimSpace(name[:idx]))
	}
	if idx := strings.Index(name, ","); idx > 0 {
		variants = append(variants, strings.TrimSpace(name[:idx]))
	}

	return variants
}
