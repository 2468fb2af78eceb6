// Package flightgen produces mock flight offers and seat maps for the
// booking wizard.
package flightgen

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
)

const BasePrice int64 = 3500

type airline struct {
	Name string
	Code string
}

var airlines = []airline{
	{Name: "IndiGo", Code: "6E"},
	{Name: "Air India", Code: "AI"},
	{Name: "SpiceJet", Code: "SG"},
	{Name: "Vistara", Code: "UK"},
	{Name: "AirAsia", Code: "I5"},
}

var (
	departureHours   = []int{6, 8, 10, 13, 16, 18, 20, 22}
	departureMinutes = []int{0, 15, 30, 45}
)

// Generator builds a deterministic set of offers for each (origin,
// destination, date) key. The same seed and key always yield the same offers.
type Generator struct {
	seed     uint64
	location *time.Location
}

func NewGenerator(seed uint64, location *time.Location) *Generator {
	if location == nil {
		location = time.UTC
	}
	return &Generator{seed: seed, location: location}
}

func (g *Generator) Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, g.location)
	rng := rand.New(rand.NewPCG(g.seed, keyHash(origin, destination, day)))

	count := 5 + rng.IntN(6)
	offers := make([]domain.FlightOffer, 0, count)
	used := make(map[string]struct{}, count)

	for len(offers) < count {
		al := airlines[rng.IntN(len(airlines))]
		number := fmt.Sprintf("%s-%d", al.Code, 100+rng.IntN(900))
		if _, dup := used[number]; dup {
			continue
		}
		used[number] = struct{}{}

		dep := day.Add(time.Duration(departureHours[rng.IntN(len(departureHours))])*time.Hour +
			time.Duration(departureMinutes[rng.IntN(len(departureMinutes))])*time.Minute)

		duration := 75 + rng.IntN(31)
		stops := domain.StopsNonStop
		if rng.Float64() < 0.2 {
			stops = domain.StopsOneStop
			duration += 60 + rng.IntN(61)
		}

		offers = append(offers, domain.FlightOffer{
			ID:              number,
			Airline:         al.Name,
			FlightNumber:    number,
			From:            origin,
			To:              destination,
			DepartureTime:   dep,
			ArrivalTime:     dep.Add(time.Duration(duration) * time.Minute),
			DurationMinutes: duration,
			Stops:           stops,
			BasePrice:       BasePrice,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].DepartureTime.Before(offers[j].DepartureTime)
	})
	return offers, nil
}

func keyHash(origin, destination string, day time.Time) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%s:%s", origin, destination, day.Format(time.DateOnly))
	return h.Sum64()
}
