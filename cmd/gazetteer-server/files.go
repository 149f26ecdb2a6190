package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

// sourceFiles holds the open file handles needed for one index build.
type sourceFiles struct {
	countryInfo *os.File
	admin1Codes *os.File
	admin2Codes *os.File
	cities      *os.File

	altWikiNames        *os.File
	estimatedImportance *os.File
}

func openSourceFiles(dir string) (*sourceFiles, error) {
	open := func(name string) (*os.File, error) {
		return os.Open(filepath.Join(dir, name))
	}
	openOptional := func(name string) *os.File {
		f, err := open(name)
		if err != nil {
			return nil
		}
		return f
	}

	countryInfo, err := open("countryInfo.txt")
	if err != nil {
		return nil, err
	}
	admin1Codes, err := open("admin1Codes.txt")
	if err != nil {
		countryInfo.Close()
		return nil, err
	}
	admin2Codes, err := open("admin2Codes.txt")
	if err != nil {
		countryInfo.Close()
		admin1Codes.Close()
		return nil, err
	}
	cities, err := open("cities5000.txt")
	if err != nil {
		countryInfo.Close()
		admin1Codes.Close()
		admin2Codes.Close()
		return nil, err
	}

	return &sourceFiles{
		countryInfo:         countryInfo,
		admin1Codes:         admin1Codes,
		admin2Codes:         admin2Codes,
		cities:              cities,
		altWikiNames:        openOptional("alt_wiki_names.json"),
		estimatedImportance: openOptional("estimated_importance.json"),
	}, nil
}

func (s *sourceFiles) Inputs() gazetteer.BuildInputs {
	in := gazetteer.BuildInputs{
		CountryInfo: s.countryInfo,
		Admin1Codes: s.admin1Codes,
		Admin2Codes: s.admin2Codes,
		Cities:      s.cities,
	}
	if s.altWikiNames != nil {
		in.AltWikiNames = io.Reader(s.altWikiNames)
	}
	if s.estimatedImportance != nil {
		in.EstimatedImportance = io.Reader(s.estimatedImportance)
	}
	return in
}

func (s *sourceFiles) Close() {
	for _, f := range []*os.File{s.countryInfo, s.admin1Codes, s.admin2Codes, s.cities, s.altWikiNames, s.estimatedImportance} {
		if f != nil {
			f.Close()
		}
	}
}
