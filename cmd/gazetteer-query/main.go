// Command gazetteer-query loads a previously built gazetteer name index
// and runs lookups against it from the command line.
//
// Usage:
//
//	gazetteer-query city "san francisco" --index index.json
//	gazetteer-query country japan --index index.json
//	gazetteer-query id 1850147 --index index.json
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

var indexPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "gazetteer-query",
		Short: "Query a built gazetteer name index",
	}
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "gazetteer_index.json", "path to a gazetteer name index JSON document")

	rootCmd.AddCommand(
		searchCmd("city", "search cities by name", func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.CitySearch(name)
		}),
		searchCmd("admin1", "search admin-1 divisions by name", func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AdminLevel1Search(name)
		}),
		searchCmd("admin2", "search admin-2 divisions by name", func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AdminLevel2Search(name)
		}),
		searchCmd("country", "search countries by name", func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.CountrySearch(name)
		}),
		searchCmd("all", "search all resolutions by name", func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AllLocationsSearch(name)
		}),
		idCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func searchCmd(use, short string, search func(*gazetteer.DataSource, string) map[int64]gazetteer.Location) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataSource(indexPath)
			if err != nil {
				return err
			}
			return printJSON(search(ds, args[0]))
		},
	}
}

func idCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id <id>",
		Short: "look up a single location by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataSource(indexPath)
			if err != nil {
				return err
			}
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			loc, found := ds.GetLocationByID(id)
			if !found {
				fmt.Println("not found")
				return nil
			}
			return printJSON(loc)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
