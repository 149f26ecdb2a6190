package gazetteer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteNameIndexJSON serializes the index's name map as a single JSON
// document shaped {normalized_name: {id: record}}, mirroring the
// reference export format: every alternate name a record is known by
// gets its own top-level key, each mapping to every record (by id) that
// resolves under that name.
func (idx *Index) WriteNameIndexJSON(w io.Writer) error {
	out := make(map[string]map[string]*Location, len(idx.byName))
	for name, bucket := range idx.byName {
		byID := make(map[string]*Location, len(bucket))
		for id, rec := range bucket {
			byID[strconv.FormatInt(id, 10)] = rec
		}
		out[name] = byID
	}

	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// ExportRows flattens the index into row tuples suitable for a bulk SQL
// insert: one row per distinct location, and one (name, location_id) row
// per name the location is known by (primary name plus every
// alternate).
func (idx *Index) ExportRows() (locations [][]interface{}, names [][]interface{}) {
	locations = make([][]interface{}, 0, len(idx.byID))
	for _, rec := range idx.byID {
		locations = append(locations, []interface{}{
			rec.ID, string(rec.Resolution), rec.Name, rec.Country, rec.CountryCode, rec.CountryID,
			rec.AdminLevel1, rec.AdminLevel1ID, rec.AdminLevel2, rec.AdminLevel2ID,
			rec.Population, rec.Latitude, rec.Longitude, rec.EstimatedImportance,
		})
	}

	for name, bucket := range idx.byName {
		for id := range bucket {
			names = append(names, []interface{}{name, id})
		}
	}
	return locations, names
}

// LoadIndexFromNameJSON reconstructs an Index from the JSON document
// produced by WriteNameIndexJSON. Every distinct id encountered is
// deduplicated to a single shared *Location, regardless of how many
// names it appears under, preserving the name-aliasing identity
// invariant the builder establishes.
func LoadIndexFromNameJSON(r io.Reader) (*Index, error) {
	var raw map[string]map[string]*Location
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode name index: %w", err)
	}

	byID := make(map[int64]*Location)
	byName := make(map[string]map[int64]*Location, len(raw))

	for name, bucket := range raw {
		idBucket := make(map[int64]*Location, len(bucket))
		for idStr, rec := range bucket {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("name index: invalid id %q under name %q: %w", idStr, name, err)
			}
			if existing, ok := byID[id]; ok {
				idBucket[id] = existing
				continue
			}
			rec.ID = id
			byID[id] = rec
			idBucket[id] = rec
		}
		byName[name] = idBucket
	}

	return &Index{byID: byID, byName: byName}, nil
}
