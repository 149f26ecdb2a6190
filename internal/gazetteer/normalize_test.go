package gazetteer

import "testing"

func TestStandardizeCasePolicy(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"US", "US"},
		{"usa", "usa"},
		{"U.S.A.", "U.S.A."},
		{"japan", "Japan"},
		{"washington, d.c.", "Washington, D.C."},
		{"São pauLo", "Sao Paulo"},
	}
	for _, c := range cases {
		if got := standardize(c.in); got != c.want {
			t.Errorf("standardize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStandardizeIdempotent(t *testing.T) {
	inputs := []string{"US", "usa", "U.S.A.", "japan", "washington, d.c.", "São pauLo", "New York City"}
	for _, in := range inputs {
		once := standardize(in)
		twice := standardize(once)
		if once != twice {
			t.Errorf("standardize(%q) = %q, but standardize of that = %q", in, once, twice)
		}
	}
}

func TestStandardizeEmpty(t *testing.T) {
	if got := standardize(""); got != "" {
		t.Errorf("standardize(\"\") = %q, want empty", got)
	}
	if got := standardize("   "); got != "" {
		t.Errorf("standardize(whitespace) = %q, want empty", got)
	}
}

func TestAltPuncNamesApostrophe(t *testing.T) {
	variants := altPuncNames("Cote d'Ivoire")
	found := false
	for _, v := range variants {
		if v == "Cote dIvoire" {
			found = true
		}
	}
	if !found {
		t.Errorf("altPuncNames(%q) = %v, want an apostrophe-stripped variant", "Cote d'Ivoire", variants)
	}
}

func TestAltPuncNamesParenAndComma(t *testing.T) {
	variants := altPuncNames("Springfield (IL)")
	if !contains(variants, "Springfield") {
		t.Errorf("altPuncNames(%q) = %v, want a paren-truncated variant", "Springfield (IL)", variants)
	}

	variants = altPuncNames("Washington, D.C.")
	if !contains(variants, "Washington") {
		t.Errorf("altPuncNames(%q) = %v, want a comma-truncated variant", "Washington, D.C.", variants)
	}
}

func TestAltPuncNamesSaintPrefix(t *testing.T) {
	variants := altPuncNames("Saint Louis")
	if !contains(variants, "St. Louis") {
		t.Errorf("altPuncNames(%q) = %v, want a St. variant", "Saint Louis", variants)
	}
}

func contains(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}
