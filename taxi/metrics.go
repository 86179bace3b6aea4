package taxi

import (
	"math"
	"sort"
)

var paymentTypeNames = map[string]string{
	"1": "Credit Card",
	"2": "Cash",
	"3": "No Charge",
	"4": "Dispute",
	"5": "Unknown",
	"6": "Voided Trip",
}

// PaymentTypeName maps a TLC payment code to a readable name.
// Unmapped codes are returned unchanged and an empty code is "Unknown".
func PaymentTypeName(code string) string {
	if name, ok := paymentTypeNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}

// CalculateMetrics aggregates trips into dashboard metrics.
func CalculateMetrics(trips []TripRecord) Metrics {
	m := Metrics{
		TotalTrips:              len(trips),
		RevenueByBorough:        []BoroughRevenue{},
		TripsOverTime:           []DailyTrips{},
		PaymentTypeDistribution: []PaymentShare{},
	}
	if len(trips) == 0 {
		return m
	}

	var (
		revenue, distance, tips float64

		boroughOrder []string
		byBorough    = make(map[string]float64)

		byDay = make(map[string]*DailyTrips)

		paymentOrder []string
		byPayment    = make(map[string]int)
	)

	for _, trip := range trips {
		revenue += trip.TotalAmount
		distance += trip.TripDistance
		tips += trip.TipAmount

		borough := trip.Borough
		if borough == "" {
			borough = "Unknown"
		}
		if _, ok := byBorough[borough]; !ok {
			boroughOrder = append(boroughOrder, borough)
		}
		byBorough[borough] += trip.TotalAmount

		date := trip.PickupDatetime.UTC().Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			day = &DailyTrips{Date: date}
			byDay[date] = day
		}
		day.Trips++
		day.Revenue += trip.TotalAmount

		payment := PaymentTypeName(trip.PaymentType)
		if _, ok := byPayment[payment]; !ok {
			paymentOrder = append(paymentOrder, payment)
		}
		byPayment[payment]++
	}

	total := float64(len(trips))
	m.TotalRevenue = roundTo(revenue, 2)
	m.AvgTripDistance = roundTo(distance/total, 2)
	m.AvgTip = roundTo(tips/total, 2)

	for _, borough := range boroughOrder {
		m.RevenueByBorough = append(m.RevenueByBorough, BoroughRevenue{
			Borough: borough,
			Revenue: roundTo(byBorough[borough], 2),
		})
	}
	sort.SliceStable(m.RevenueByBorough, func(i, j int) bool {
		return m.RevenueByBorough[i].Revenue > m.RevenueByBorough[j].Revenue
	})

	for _, day := range byDay {
		m.TripsOverTime = append(m.TripsOverTime, DailyTrips{
			Date:    day.Date,
			Trips:   day.Trips,
			Revenue: roundTo(day.Revenue, 2),
		})
	}
	sort.Slice(m.TripsOverTime, func(i, j int) bool {
		return m.TripsOverTime[i].Date < m.TripsOverTime[j].Date
	})

	for _, payment := range paymentOrder {
		count := byPayment[payment]
		m.PaymentTypeDistribution = append(m.PaymentTypeDistribution, PaymentShare{
			Type:       payment,
			Count:      count,
			Percentage: roundTo(float64(count)/total*100, 1),
		})
	}
	sort.SliceStable(m.PaymentTypeDistribution, func(i, j int) bool {
		return m.PaymentTypeDistribution[i].Count > m.PaymentTypeDistribution[j].Count
	})

	return m
}

// roundTo rounds half up to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}
