package taxi

import (
	"math/rand"
	"sort"
	"time"
)

// Boroughs lists the five boroughs of the zone lookup table.
var Boroughs = []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"}

var (
	paymentCodes   = []string{"1", "2", "3", "4"}
	paymentWeights = []float64{0.65, 0.3, 0.03, 0.02}
)

// Generator produces plausible synthetic trips. It is deterministic for a given seed
// and not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	base time.Time
	span time.Duration
}

// NewGenerator creates a generator whose pickups fall in the 30 days after base.
func NewGenerator(seed int64, base time.Time) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		base: base.UTC(),
		span: 30 * 24 * time.Hour,
	}
}

// Trips generates count trips spread over boroughs (all five when empty),
// newest pickup first.
func (g *Generator) Trips(count int, boroughs ...string) []TripRecord {
	if len(boroughs) == 0 {
		boroughs = Boroughs
	}
	trips := make([]TripRecord, 0, count)
	for i := 0; i < count; i++ {
		trips = append(trips, g.trip(boroughs[g.rng.Intn(len(boroughs))]))
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].PickupDatetime.After(trips[j].PickupDatetime)
	})
	return trips
}

func (g *Generator) trip(borough string) TripRecord {
	r := g.rng
	distance := r.Float64()*15 + 0.5
	fare := 3.5 + distance*2.5 + r.Float64()*5

	tip := 0.0
	if r.Float64() > 0.2 {
		tip = fare * (r.Float64()*0.3 + 0.1)
	}
	tolls := 0.0
	if r.Float64() > 0.8 {
		tolls = r.Float64()*10 + 5
	}
	extra := 0.5
	if r.Float64() > 0.5 {
		extra = 1
	}
	const mtaTax, improvementSurcharge = 0.5, 1.0
	airportFee := 0.0
	if r.Float64() > 0.9 {
		airportFee = 1.75
	}

	pickup := g.base.Add(time.Duration(r.Float64() * float64(g.span))).Truncate(time.Second)
	minutes := distance/15*60 + r.Float64()*20
	dropoff := pickup.Add(time.Duration(minutes * float64(time.Minute))).Truncate(time.Second)

	return TripRecord{
		PickupDatetime:  pickup,
		DropoffDatetime: dropoff,
		TripDistance:    roundTo(distance, 2),
		FareAmount:      roundTo(fare, 2),
		TipAmount:       roundTo(tip, 2),
		TotalAmount:     roundTo(fare+tip+tolls+extra+mtaTax+improvementSurcharge+airportFee, 2),
		PaymentType:     g.paymentCode(),
		Borough:         borough,
	}
}

func (g *Generator) paymentCode() string {
	x := g.rng.Float64()
	cum := 0.0
	for i, w := range paymentWeights {
		cum += w
		if x <= cum {
			return paymentCodes[i]
		}
	}
	return paymentCodes[0]
}
