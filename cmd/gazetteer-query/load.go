package main

import (
	"fmt"
	"os"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

func loadDataSource(path string) (*gazetteer.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	idx, err := gazetteer.LoadIndexFromNameJSON(f)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return gazetteer.NewDataSource(idx), nil
}
