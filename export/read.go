package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nyctaxi/taxi"
)

// ReadTripsDir loads every *_trips.csv file in dir. Trips without a borough
// take it from the file name, as the dashboard does when it merges the files.
func ReadTripsDir(dir string) ([]taxi.TripRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*_trips.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *_trips.csv files in %s", dir)
	}
	sort.Strings(paths)

	var all []taxi.TripRecord
	for _, path := range paths {
		trips, err := readTripsFile(path)
		if err != nil {
			return nil, err
		}
		borough := boroughFromFileName(filepath.Base(path))
		for i := range trips {
			if trips[i].Borough == "" {
				trips[i].Borough = borough
			}
		}
		log.Printf("Loaded %d trips from %s", len(trips), path)
		all = append(all, trips...)
	}
	return all, nil
}

func readTripsFile(path string) ([]taxi.TripRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	trips, err := ReadTripsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return trips, nil
}

// boroughFromFileName turns "staten_island_trips.csv" into "Staten Island".
func boroughFromFileName(name string) string {
	slug := strings.TrimSuffix(name, "_trips.csv")
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
