package gazetteer

// fixedAltKey identifies the single record a fixedAlternateNames entry
// must resolve to: its standardized primary name, its country, and its
// resolution.
type fixedAltKey struct {
	name       string
	country    string
	resolution Resolution
}

// fixedAlternateNames is the hand-curated table of alternate names that
// must be present in the index regardless of what the source alt-names
// feed contains. Each key identifies exactly one record by its primary
// name, country, and resolution; the values are registered as additional
// names for that record during Build.
var fixedAlternateNames = map[fixedAltKey][]string{
	{"United States", "United States", Country}: {
		"USA", "U.S.A.", "US", "U.S.", "the United States", "United States of America", "America",
	},
	{"United Kingdom", "United Kingdom", Country}: {
		"Great Britain", "Britain", "UK", "U.K.",
	},
	{"Palestinian Territory", "Palestinian Territory", Country}: {
		"Palestine", "State of Palestine",
	},
	{"South Korea", "South Korea", Country}: {"Korea"},
	{"North Korea", "North Korea", Country}: {"Korea"},
	{"Netherlands", "Netherlands", Country}: {"The Netherlands", "Holland"},
	{"Ivory Coast", "Ivory Coast", Country}:  {"Cote d'Ivoire"},

	{"Washington", "United States", Admin1}: {"Washington State"},
	{"New York", "United States", Admin1}:   {"NY", "N.Y."},

	{"Washington, D.C.", "United States", City}: {
		"District of Columbia", "Washington", "DC", "D.C.",
		"Washington, DC", "Washington D.C.", "Washington DC",
	},
	{"New York City", "United States", City}: {"NYC", "N.Y.C."},
	{"Venice", "Italy", City}:                {"Venezia"},
	{"Los Angeles", "United States", City}:   {"LA", "L.A."},
}
