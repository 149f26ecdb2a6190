package gazetteer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// retainedFeatureCodes is the whitelist of Geonames feature codes kept
// from the cities file (ordinary populated places, administrative seats,
// capitals and the like); everything else (historical, abandoned or
// destroyed places, etc.) is dropped.
var retainedFeatureCodes = map[string]bool{
	"PPL": true, "PPLA": true, "PPLA2": true, "PPLA3": true, "PPLA4": true,
	"PPLC": true, "PPLF": true, "PPLG": true, "PPLL": true, "PPLR": true,
	"PPLS": true, "PPLX": true,
}

// minPopulationForWikiAltNames gates which records are allowed to pick
// up alternate names from the (noisier) Wikipedia-derived alt-names
// file: below this population an alt name is more likely to be noise
// than a genuine well-known alias.
const minPopulationForWikiAltNames = 100_000

// BuildInputs names the six source files consumed by Build. The four
// TSV readers are required; the two JSON readers are optional and may
// be nil, in which case the corresponding phase is skipped.
type BuildInputs struct {
	CountryInfo io.Reader
	Admin1Codes io.Reader
	Admin2Codes io.Reader
	Cities      io.Reader

	AltWikiNames        io.Reader
	EstimatedImportance io.Reader
}

// builder holds the mutable state accumulated while constructing an
// Index. It is discarded once Build returns; nothing here outlives the
// call.
type builder struct {
	log *slog.Logger

	byID   map[int64]*Location
	byName map[string]map[int64]*Location

	countryByISO   map[string]*Location
	admin1ByCode   map[string]*Location
	admin1CodeByID map[int64]string
	admin2ByCode   map[string]*Location

	rawNeighbors map[int64]string
}

// Build runs the full multi-phase ingestion pipeline over in and
// returns the frozen, queryable Index. It is single-threaded and does
// not retain in after returning. Any data-integrity problem (duplicate
// id, unresolvable fixed alternate name, missing override target)
// aborts the build with a wrapped error; individual malformed or
// uninteresting rows are skipped silently and counted.
func Build(in BuildInputs, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	b := &builder{
		log:            logger,
		byID:           make(map[int64]*Location),
		byName:         make(map[string]map[int64]*Location),
		countryByISO:   make(map[string]*Location),
		admin1ByCode:   make(map[string]*Location),
		admin1CodeByID: make(map[int64]string),
		admin2ByCode:   make(map[string]*Location),
		rawNeighbors:   make(map[int64]string),
	}

	phases := []struct {
		name string
		run  func() (skipped int, err error)
	}{
		{"countries", func() (int, error) { return b.loadCountries(in.CountryInfo) }},
		{"admin-1", func() (int, error) { return b.loadAdmin1(in.Admin1Codes) }},
		{"admin-2", func() (int, error) { return b.loadAdmin2(in.Admin2Codes) }},
		{"cities", func() (int, error) { return b.loadCities(in.Cities) }},
		{"fixed-alt-names", func() (int, error) { return 0, b.installFixedAlternateNames() }},
		{"wiki-alt-names", func() (int, error) { return b.installWikiAlternateNames(in.AltWikiNames) }},
		{"importance", func() (int, error) { return b.assignImportance(in.EstimatedImportance) }},
	}

	for _, phase := range phases {
		start := time.Now()
		skipped, err := phase.run()
		if err != nil {
			return nil, fmt.Errorf("gazetteer: phase %q: %w", phase.name, err)
		}
		b.log.Info("gazetteer build phase complete",
			"phase", phase.name, "duration", time.Since(start), "rows_loaded", len(b.byID))
		if skipped > 0 {
			b.log.Debug("gazetteer build phase skipped rows", "phase", phase.name, "skipped", skipped)
		}
	}

	delete(b.byName, "")

	return &Index{byID: b.byID, byName: b.byName}, nil
}

// --- phase 1: countries ---

func (b *builder) loadCountries(r io.Reader) (int, error) {
	skipped := 0
	err := eachTSVRow(r, func(cols []string) error {
		if len(cols) < 18 {
			skipped++
			return nil
		}
		iso := strings.ToUpper(strings.TrimSpace(cols[0]))
		name := standardize(cols[4])
		population := parseInt64(cols[7])
		id := parseInt64(cols[16])
		neighbors := strings.TrimSpace(cols[17])

		if id == 0 || name == "" {
			skipped++
			return nil
		}
		if _, exists := b.byID[id]; exists {
			return fmt.Errorf("%w: id %d (country %s)", ErrDuplicateID, id, name)
		}

		rec := &Location{
			ID:         id,
			Resolution: Country,
			Name:       name,
			Country:    name,
			CountryCode: iso,
			CountryID:  id,
			Population: population,
		}
		b.register(rec, name)
		if iso != "" {
			b.countryByISO[iso] = rec
		}
		if neighbors != "" {
			b.rawNeighbors[id] = neighbors
		}
		return nil
	})
	if err != nil {
		return skipped, err
	}

	for id, raw := range b.rawNeighbors {
		rec := b.byID[id]
		for _, code := range strings.Split(raw, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if neighbor, ok := b.countryByISO[code]; ok {
				rec.NeighborCountryIDs = append(rec.NeighborCountryIDs, neighbor.ID)
			}
		}
	}

	return skipped, nil
}

// --- phase 2: admin-1 ---

func (b *builder) loadAdmin1(r io.Reader) (int, error) {
	skipped := 0
	err := eachTSVRow(r, func(cols []string) error {
		if len(cols) < 4 {
			skipped++
			return nil
		}
		fullCode := strings.TrimSpace(cols[0])
		cc, a1, ok := splitAdminCode(fullCode, 1)
		if !ok {
			skipped++
			return nil
		}
		name := standardize(cols[1])
		id := parseInt64(cols[3])
		if id == 0 || name == "" {
			skipped++
			return nil
		}

		country, ok := b.countryByISO[cc]
		if !ok {
			return fmt.Errorf("%w: %s (admin1 %s)", ErrMissingCountryParent, cc, name)
		}
		if _, exists := b.byID[id]; exists {
			return fmt.Errorf("%w: id %d (admin1 %s)", ErrDuplicateID, id, name)
		}

		rec := &Location{
			ID:          id,
			Resolution:  Admin1,
			Name:        name,
			Country:     country.Name,
			CountryCode: country.CountryCode,
			CountryID:   country.ID,
		}
		b.register(rec, name)
		b.admin1ByCode[fullCode] = rec
		b.admin1CodeByID[id] = fullCode

		if cc == "US" && len(a1) == 2 {
			bare := standardize(a1)
			dotted := standardize(fmt.Sprintf("%c.%c.", a1[0], a1[1]))
			b.registerAlternate(rec, bare)
			b.registerAlternate(rec, dotted)
		}
		return nil
	})
	return skipped, err
}

// --- phase 3: admin-2 ---

func (b *builder) loadAdmin2(r io.Reader) (int, error) {
	skipped := 0
	err := eachTSVRow(r, func(cols []string) error {
		if len(cols) < 4 {
			skipped++
			return nil
		}
		fullCode := strings.TrimSpace(cols[0])
		cc, _, ok := splitAdminCode(fullCode, 2)
		if !ok {
			skipped++
			return nil
		}
		name := standardize(cols[1])
		id := parseInt64(cols[3])
		if id == 0 || name == "" {
			skipped++
			return nil
		}

		country, ok := b.countryByISO[cc]
		if !ok {
			return fmt.Errorf("%w: %s (admin2 %s)", ErrMissingCountryParent, cc, name)
		}
		if _, exists := b.byID[id]; exists {
			return fmt.Errorf("%w: id %d (admin2 %s)", ErrDuplicateID, id, name)
		}

		rec := &Location{
			ID:          id,
			Resolution:  Admin2,
			Name:        name,
			Country:     country.Name,
			CountryCode: country.CountryCode,
			CountryID:   country.ID,
		}

		admin1Code := fullCode[:strings.LastIndex(fullCode, ".")]
		if admin1, ok := b.admin1ByCode[admin1Code]; ok {
			rec.AdminLevel1 = admin1.Name
			rec.AdminLevel1ID = admin1.ID
		}

		b.register(rec, name)
		b.admin2ByCode[fullCode] = rec
		return nil
	})
	return skipped, err
}

// --- phase 4: cities ---

func (b *builder) loadCities(r io.Reader) (int, error) {
	skipped := 0
	err := eachTSVRow(r, func(cols []string) error {
		if len(cols) < 15 {
			skipped++
			return nil
		}
		featureCode := strings.ToUpper(strings.TrimSpace(cols[7]))
		if !retainedFeatureCodes[featureCode] {
			skipped++
			return nil
		}

		id := parseInt64(cols[0])
		name := standardize(cols[1])
		if id == 0 || name == "" {
			skipped++
			return nil
		}

		cc := strings.ToUpper(strings.TrimSpace(cols[8]))
		country, ok := b.countryByISO[cc]
		if !ok {
			return fmt.Errorf("%w: %s (city %s)", ErrMissingCountryParent, cc, name)
		}
		if _, exists := b.byID[id]; exists {
			return fmt.Errorf("%w: id %d (city %s)", ErrDuplicateID, id, name)
		}

		population := parseInt64(cols[14])

		rec := &Location{
			ID:          id,
			Resolution:  City,
			Name:        name,
			Country:     country.Name,
			CountryCode: country.CountryCode,
			CountryID:   country.ID,
			Population:  population,
			Latitude:    parseFloat64(cols[4]),
			Longitude:   parseFloat64(cols[5]),
		}

		var admin1, admin2 *Location
		if a1 := strings.TrimSpace(cols[10]); a1 != "" {
			if rec2, ok := b.admin1ByCode[cc+"."+a1]; ok {
				admin1 = rec2
				rec.AdminLevel1 = rec2.Name
				rec.AdminLevel1ID = rec2.ID
			}
		}
		if a2 := strings.TrimSpace(cols[11]); a2 != "" && admin1 != nil {
			if code, ok := b.admin1CodeByID[admin1.ID]; ok {
				if rec2, ok := b.admin2ByCode[code+"."+a2]; ok {
					admin2 = rec2
					rec.AdminLevel2 = rec2.Name
					rec.AdminLevel2ID = rec2.ID
				}
			}
		}

		b.register(rec, name)

		if admin1 != nil {
			admin1.Population += population
		}
		if admin2 != nil {
			admin2.Population += population
		}
		return nil
	})
	return skipped, err
}

// --- phase 5: fixed alternate names ---

func (b *builder) installFixedAlternateNames() error {
	for key, alts := range fixedAlternateNames {
		primary := standardize(key.name)
		bucket := b.byName[primary]

		var match *Location
		matches := 0
		for _, rec := range bucket {
			if rec.Name == primary && rec.Country == key.country && rec.Resolution == key.resolution {
				match = rec
				matches++
			}
		}
		switch {
		case matches == 0:
			return fmt.Errorf("%w: %s/%s/%s", ErrAlternateNameNotFound, key.name, key.country, key.resolution)
		case matches > 1:
			return fmt.Errorf("%w: %s/%s/%s", ErrAlternateNameAmbiguous, key.name, key.country, key.resolution)
		}

		for _, alt := range alts {
			b.registerAlternate(match, standardize(alt))
		}
	}
	return nil
}

// --- phase 6: wiki alternate names ---

func (b *builder) installWikiAlternateNames(r io.Reader) (int, error) {
	if r == nil {
		b.log.Info("gazetteer alt-wiki-names file absent, skipping phase")
		return 0, nil
	}

	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return 0, fmt.Errorf("decode alt-wiki-names: %w", err)
	}

	skipped := 0
	for idStr, alts := range raw {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		rec, ok := b.byID[id]
		if !ok || rec.Population < minPopulationForWikiAltNames {
			skipped++
			continue
		}
		for _, alt := range alts {
			b.registerAlternate(rec, standardize(alt))
		}
	}
	return skipped, nil
}

// --- phase 7: importance ---

func (b *builder) assignImportance(r io.Reader) (int, error) {
	skipped := 0
	if r == nil {
		b.log.Info("gazetteer estimated-importance file absent, skipping assignment")
	} else {
		var raw map[string]float64
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return 0, fmt.Errorf("decode estimated-importance: %w", err)
		}
		for idStr, score := range raw {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				skipped++
				continue
			}
			rec, ok := b.byID[id]
			if !ok {
				skipped++
				continue
			}
			rec.EstimatedImportance = score
		}
	}

	var dc *Location
	for _, rec := range b.byID {
		if rec.Resolution == City && rec.Name == "Washington, D.C." && rec.Country == "United States" {
			dc = rec
			break
		}
	}
	if dc == nil {
		return skipped, ErrMissingOverrideTarget
	}
	dc.EstimatedImportance = 0.8

	return skipped, nil
}

// --- shared helpers ---

// register installs rec under its primary name plus every punctuation
// variant of that name, and indexes it by id.
func (b *builder) register(rec *Location, primaryName string) {
	b.byID[rec.ID] = rec
	b.registerAlternate(rec, primaryName)
	for _, variant := range altPuncNames(primaryName) {
		b.registerAlternate(rec, standardize(variant))
	}
}

// registerAlternate adds one more name key for an already-built record
// without touching byID.
func (b *builder) registerAlternate(rec *Location, name string) {
	if name == "" {
		return
	}
	bucket, ok := b.byName[name]
	if !ok {
		bucket = make(map[int64]*Location)
		b.byName[name] = bucket
	}
	bucket[rec.ID] = rec
}

// splitAdminCode splits a composite admin code ("CC.A1" or "CC.A1.A2")
// into its country code and its own trailing segment, validating that it
// has exactly the expected number of dot-separated parts.
func splitAdminCode(code string, level int) (countryCode, own string, ok bool) {
	parts := strings.Split(code, ".")
	if len(parts) != level+1 {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), parts[len(parts)-1], true
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat64(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// eachTSVRow scans r line by line, skipping blank lines and lines
// beginning with '#' (Geonames ships commented header lines in some of
// these files), splitting the rest on tabs.
func eachTSVRow(r io.Reader, fn func(cols []string) error) error {
	if r == nil {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(strings.Split(line, "\t")); err != nil {
			return err
		}
	}
	return scanner.Err()
}
