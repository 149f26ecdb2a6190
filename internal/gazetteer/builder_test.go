package gazetteer

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	if err != nil {
		t.Fatalf("open fixture %s: %v", name, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func buildFixtureIndex(t *testing.T) *Index {
	t.Helper()
	in := BuildInputs{
		CountryInfo:         openFixture(t, "countryInfo.txt"),
		Admin1Codes:         openFixture(t, "admin1Codes.txt"),
		Admin2Codes:         openFixture(t, "admin2Codes.txt"),
		Cities:              openFixture(t, "cities5000.txt"),
		AltWikiNames:        openFixture(t, "alt_wiki_names.json"),
		EstimatedImportance: openFixture(t, "estimated_importance.json"),
	}
	idx, err := Build(in, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestBuildRecordCount(t *testing.T) {
	idx := buildFixtureIndex(t)
	const want = 13 + 5 + 2 + 9 // countries + admin1 + admin2 + cities
	if got := idx.Len(); got != want {
		t.Errorf("idx.Len() = %d, want %d", got, want)
	}
}

func TestBuildCountryNeighbors(t *testing.T) {
	idx := buildFixtureIndex(t)
	ds := NewDataSource(idx)

	results := ds.CountrySearch("United States")
	if len(results) != 1 {
		t.Fatalf("CountrySearch(United States) = %d results, want 1", len(results))
	}
	var us Location
	for _, rec := range results {
		us = rec
	}

	canada := ds.CountrySearch("Canada")
	mexico := ds.CountrySearch("Mexico")
	var canadaID, mexicoID int64
	for id := range canada {
		canadaID = id
	}
	for id := range mexico {
		mexicoID = id
	}

	if !containsID(us.NeighborCountryIDs, canadaID) {
		t.Errorf("United States neighbors %v missing Canada (%d)", us.NeighborCountryIDs, canadaID)
	}
	if !containsID(us.NeighborCountryIDs, mexicoID) {
		t.Errorf("United States neighbors %v missing Mexico (%d)", us.NeighborCountryIDs, mexicoID)
	}
}

func containsID(ids []int64, target int64) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func TestBuildAdminHierarchyAndPopulationAccumulation(t *testing.T) {
	idx := buildFixtureIndex(t)
	ds := NewDataSource(idx)

	sf := mustOne(t, ds.CitySearch("San Francisco"))
	if sf.AdminLevel1 != "California" {
		t.Errorf("San Francisco admin1 = %q, want California", sf.AdminLevel1)
	}
	if sf.AdminLevel2 != "San Francisco County" {
		t.Errorf("San Francisco admin2 = %q, want San Francisco County", sf.AdminLevel2)
	}

	county := mustOne(t, ds.AdminLevel2Search("San Francisco County"))
	if county.Population != sf.Population {
		t.Errorf("San Francisco County population = %d, want %d (only SF sits in it)", county.Population, sf.Population)
	}

	la := mustOne(t, ds.CitySearch("Los Angeles"))
	california := mustOne(t, ds.AdminLevel1Search("California"))
	wantPop := sf.Population + la.Population
	if california.Population != wantPop {
		t.Errorf("California population = %d, want %d (SF + LA)", california.Population, wantPop)
	}
}

func TestBuildFixedAlternateNames(t *testing.T) {
	idx := buildFixtureIndex(t)
	ds := NewDataSource(idx)

	usa := mustOne(t, ds.CountrySearch("USA"))
	if usa.Resolution != Country || usa.Name != "United States" {
		t.Errorf("CountrySearch(USA) resolved to %+v, want United States", usa)
	}

	dc := mustOne(t, ds.CitySearch("DC"))
	if dc.Name != "Washington, D.C." {
		t.Errorf("CitySearch(DC) resolved to %q, want Washington, D.C.", dc.Name)
	}

	la := mustOne(t, ds.CitySearch("L.A."))
	if la.Name != "Los Angeles" {
		t.Errorf("CitySearch(L.A.) resolved to %q, want Los Angeles", la.Name)
	}

	korea := ds.search(standardize("Korea"), "")
	if len(korea) != 2 {
		t.Errorf("search(Korea) returned %d results, want 2 (North and South Korea)", len(korea))
	}
}

func TestBuildWikiAlternateNamePopulationGate(t *testing.T) {
	idx := buildFixtureIndex(t)
	ds := NewDataSource(idx)

	peking := mustOne(t, ds.CitySearch("Peking"))
	if peking.Name != "Beijing" {
		t.Errorf("CitySearch(Peking) resolved to %q, want Beijing", peking.Name)
	}
}

func TestBuildImportanceAssignmentAndOverride(t *testing.T) {
	idx := buildFixtureIndex(t)
	ds := NewDataSource(idx)

	sf := mustOne(t, ds.CitySearch("San Francisco"))
	if sf.EstimatedImportance != 0.75 {
		t.Errorf("San Francisco importance = %v, want 0.75", sf.EstimatedImportance)
	}

	dc := mustOne(t, ds.CitySearch("Washington, D.C."))
	if dc.EstimatedImportance != 0.8 {
		t.Errorf("Washington, D.C. importance = %v, want 0.8 (mandatory override)", dc.EstimatedImportance)
	}
}

func TestBuildMissingFixedAlternateNameTargetFails(t *testing.T) {
	countryInfo, err := os.ReadFile("testdata/countryInfo.txt")
	if err != nil {
		t.Fatal(err)
	}
	// Drop Netherlands so the Netherlands entry in the fixed alternate
	// name table can't resolve.
	lines := strings.Split(strings.TrimRight(string(countryInfo), "\n"), "\n")
	var kept []string
	for _, line := range lines {
		if !strings.Contains(line, "Netherlands") {
			kept = append(kept, line)
		}
	}

	in := BuildInputs{
		CountryInfo: strings.NewReader(strings.Join(kept, "\n")),
		Admin1Codes: openFixture(t, "admin1Codes.txt"),
		Admin2Codes: openFixture(t, "admin2Codes.txt"),
		Cities:      openFixture(t, "cities5000.txt"),
	}
	_, err = Build(in, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, ErrAlternateNameNotFound) {
		t.Errorf("Build with missing Netherlands = %v, want wrapped ErrAlternateNameNotFound", err)
	}
}

func TestBuildMissingCountryParentFails(t *testing.T) {
	// "ZZ" is not a country loaded by countryInfo.txt.
	admin1 := "ZZ.XX\tNowhere\tNowhere\t999999\n"
	in := BuildInputs{
		CountryInfo: strings.NewReader(""),
		Admin1Codes: strings.NewReader(admin1),
		Admin2Codes: strings.NewReader(""),
		Cities:      strings.NewReader(""),
	}
	_, err := Build(in, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, ErrMissingCountryParent) {
		t.Errorf("Build with admin1 row for unknown country = %v, want wrapped ErrMissingCountryParent", err)
	}
}

func TestBuildDuplicateIDFails(t *testing.T) {
	countryInfo := "US\tUSA\t840\tUS\tUnited States\tWashington\t1\t1\tNA\t.us\tUSD\tDollar\t1\t\t\ten\t1\t\t\n" +
		"CA\tCAN\t124\tCA\tCanada\tOttawa\t1\t1\tNA\t.ca\tCAD\tDollar\t1\t\t\ten\t1\t\t\n"
	in := BuildInputs{
		CountryInfo: strings.NewReader(countryInfo),
		Admin1Codes: strings.NewReader(""),
		Admin2Codes: strings.NewReader(""),
		Cities:      strings.NewReader(""),
	}
	_, err := Build(in, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Build with duplicate country id = %v, want wrapped ErrDuplicateID", err)
	}
}

func mustOne(t *testing.T, results map[int64]Location) Location {
	t.Helper()
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result, got %d: %+v", len(results), results)
	}
	for _, rec := range results {
		return rec
	}
	panic("unreachable")
}
