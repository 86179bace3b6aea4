package gcppubsub

import (
	"os"

	"nyctaxi/config"
)

// GetGCPProjectID returns GCP_PROJECT_ID, or the default project when unset.
func GetGCPProjectID() string {
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		return projectID
	}
	return config.DefaultProjectID
}
