package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const AppName = "nyctaxi"

const (
	DefaultProjectID = "gen-lang-client-0589793979"
	DefaultDataset   = "bigquery-public-data.new_york_taxi_trips"
	DefaultPort      = "8080"
)

// Partition is one borough slice of the sample query: the newest Limit trips picked up in Borough.
type Partition struct {
	Borough string
	Limit   int
}

// Config holds the settings shared by every command.
type Config struct {
	ProjectID  string
	Dataset    string
	TripsTable string
	ZonesTable string
	Partitions []Partition
	Port       string
}

// DefaultPartitions is the borough split served by the responder.
func DefaultPartitions() []Partition {
	return []Partition{
		{Borough: "Manhattan", Limit: 33},
		{Borough: "Queens", Limit: 33},
		{Borough: "Brooklyn", Limit: 34},
	}
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	dataset := getEnv("TAXI_DATASET", DefaultDataset)
	cfg := Config{
		ProjectID:  getEnv("GCP_PROJECT_ID", DefaultProjectID),
		Dataset:    dataset,
		TripsTable: getEnv("TAXI_TRIPS_TABLE", dataset+".tlc_yellow_trips_2022"),
		ZonesTable: getEnv("TAXI_ZONES_TABLE", dataset+".taxi_zone_geom"),
		Partitions: DefaultPartitions(),
		Port:       getEnv("PORT", DefaultPort),
	}

	if raw := os.Getenv("TAXI_PARTITIONS"); raw != "" {
		partitions, err := ParsePartitions(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TAXI_PARTITIONS: %w", err)
		}
		cfg.Partitions = partitions
	}

	return cfg, nil
}

// ParsePartitions parses "Manhattan:33,Queens:33" into partitions, keeping the order given.
func ParsePartitions(raw string) ([]Partition, error) {
	var partitions []Partition
	seen := make(map[string]bool)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		borough, limitStr, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("partition %q: expected borough:limit", item)
		}
		borough = strings.TrimSpace(borough)
		if borough == "" {
			return nil, fmt.Errorf("partition %q: empty borough", item)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(limitStr))
		if err != nil {
			return nil, fmt.Errorf("partition %q: invalid limit: %w", item, err)
		}
		if limit <= 0 {
			return nil, fmt.Errorf("partition %q: limit must be positive", item)
		}
		if seen[borough] {
			return nil, fmt.Errorf("partition %q: duplicate borough", item)
		}
		seen[borough] = true
		partitions = append(partitions, Partition{Borough: borough, Limit: limit})
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("no partitions given")
	}
	return partitions, nil
}

// TotalLimit is the number of records a sample over partitions returns at most.
func TotalLimit(partitions []Partition) int {
	total := 0
	for _, p := range partitions {
		total += p.Limit
	}
	return total
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
