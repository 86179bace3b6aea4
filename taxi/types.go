package taxi

import "time"

// TripRecord is one yellow-cab trip joined with the borough of its pickup zone.
type TripRecord struct {
	PickupDatetime  time.Time `json:"pickup_datetime"`
	DropoffDatetime time.Time `json:"dropoff_datetime"`
	TripDistance    float64   `json:"trip_distance"` // miles
	FareAmount      float64   `json:"fare_amount"`
	TipAmount       float64   `json:"tip_amount"`
	TotalAmount     float64   `json:"total_amount"`
	PaymentType     string    `json:"payment_type"` // TLC code, "1".."6"
	Borough         string    `json:"borough"`
}

// Column names as they appear in the source tables.
const (
	ColPickupDatetime  = "pickup_datetime"
	ColDropoffDatetime = "dropoff_datetime"
	ColTripDistance    = "trip_distance"
	ColFareAmount      = "fare_amount"
	ColTipAmount       = "tip_amount"
	ColTotalAmount     = "total_amount"
	ColPaymentType     = "payment_type"
	ColBorough         = "borough"
)

// BoroughRevenue is the revenue collected in one borough.
type BoroughRevenue struct {
	Borough string  `json:"borough"`
	Revenue float64 `json:"revenue"`
}

// DailyTrips is the trip volume and revenue of one UTC day.
type DailyTrips struct {
	Date    string  `json:"date"`
	Trips   int     `json:"trips"`
	Revenue float64 `json:"revenue"`
}

// PaymentShare is how many trips were paid one way.
type PaymentShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Metrics summarizes a set of trips for the dashboard.
type Metrics struct {
	TotalRevenue            float64          `json:"totalRevenue"`
	TotalTrips              int              `json:"totalTrips"`
	AvgTripDistance         float64          `json:"avgTripDistance"`
	AvgTip                  float64          `json:"avgTip"`
	RevenueByBorough        []BoroughRevenue `json:"revenueByBorough"`
	TripsOverTime           []DailyTrips     `json:"tripsOverTime"`
	PaymentTypeDistribution []PaymentShare   `json:"paymentTypeDistribution"`
}
