package gazetteer

import "testing"

func newTinyIndex() *Index {
	rec := &Location{ID: 1, Resolution: City, Name: "Springfield", Country: "United States", CountryCode: "US", Population: 1000}
	byID := map[int64]*Location{1: rec}
	byName := map[string]map[int64]*Location{
		"Springfield": {1: rec},
	}
	return &Index{byID: byID, byName: byName}
}

func TestDataSourceResolutionFilter(t *testing.T) {
	idx := newTinyIndex()
	ds := NewDataSource(idx)

	if got := ds.CitySearch("Springfield"); len(got) != 1 {
		t.Errorf("CitySearch(Springfield) = %d results, want 1", len(got))
	}
	if got := ds.CountrySearch("Springfield"); len(got) != 0 {
		t.Errorf("CountrySearch(Springfield) = %d results, want 0 (it's a city, not a country)", len(got))
	}
	if got := ds.AllLocationsSearch("Springfield"); len(got) != 1 {
		t.Errorf("AllLocationsSearch(Springfield) = %d results, want 1", len(got))
	}
}

func TestDataSourceContinentAndOceanNamesNeverMatch(t *testing.T) {
	idx := newTinyIndex()
	ds := NewDataSource(idx)

	for _, name := range []string{"Africa", "Asia", "Pacific", "Atlantic"} {
		if got := ds.AllLocationsSearch(name); len(got) != 0 {
			t.Errorf("AllLocationsSearch(%q) = %d results, want 0", name, len(got))
		}
	}
}

func TestDataSourceEmptyQueryReturnsNothing(t *testing.T) {
	idx := newTinyIndex()
	ds := NewDataSource(idx)
	if got := ds.AllLocationsSearch(""); len(got) != 0 {
		t.Errorf("AllLocationsSearch(\"\") = %d results, want 0", len(got))
	}
}

func TestDataSourceReturnsDefensiveCopies(t *testing.T) {
	idx := newTinyIndex()
	ds := NewDataSource(idx)

	results := ds.CitySearch("Springfield")
	loc := results[1]
	loc.Population = 999999
	loc.Name = "Mutated"

	again := ds.CitySearch("Springfield")
	if again[1].Population == 999999 || again[1].Name == "Mutated" {
		t.Fatal("mutating a returned Location affected the index's own record")
	}
}

func TestGetLocationByID(t *testing.T) {
	idx := newTinyIndex()
	ds := NewDataSource(idx)

	loc, ok := ds.GetLocationByID(1)
	if !ok || loc.Name != "Springfield" {
		t.Errorf("GetLocationByID(1) = %+v, %v, want Springfield, true", loc, ok)
	}

	_, ok = ds.GetLocationByID(999)
	if ok {
		t.Error("GetLocationByID(999) found a record that shouldn't exist")
	}
}
