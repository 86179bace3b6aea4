package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

const jsonContentType = "application/json"

// TripSampleHandler runs stmt and responds with the rows as a JSON array. Any
// failure, including encoding, responds 500 with {"error": "<text>"}.
func TripSampleHandler(runner warehouse.QueryRunner, stmt warehouse.Statement) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowAnyOrigin(c)
		table, err := runner.RunQuery(c.Request.Context(), stmt)
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, table.Records())
	}
}

// MetricsHandler runs stmt and responds with the dashboard metrics of the rows.
func MetricsHandler(runner warehouse.QueryRunner, stmt warehouse.Statement) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowAnyOrigin(c)
		table, err := runner.RunQuery(c.Request.Context(), stmt)
		if err != nil {
			respondError(c, err)
			return
		}
		trips, err := taxi.FromTable(table)
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, taxi.CalculateMetrics(trips))
	}
}

// the cors middleware only answers requests carrying an Origin header
func allowAnyOrigin(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
}

func respondJSON(c *gin.Context, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		respondError(c, fmt.Errorf("failed to encode response: %w", err))
		return
	}
	c.Data(http.StatusOK, jsonContentType, body)
}

func respondError(c *gin.Context, err error) {
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	log.Printf("%s %s failed: %s", c.Request.Method, c.Request.URL.Path, msg)
	body, _ := json.Marshal(gin.H{"error": msg})
	c.Data(http.StatusInternalServerError, jsonContentType, body)
}
