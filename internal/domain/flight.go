package domain

import "time"

type Stops string

const (
	StopsNonStop Stops = "NON_STOP"
	StopsOneStop Stops = "ONE_STOP"
)

// FlightOffer is one candidate flight returned by a search. Offers are never
// modified after generation.
type FlightOffer struct {
	ID              string    `json:"id"`
	Airline         string    `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Stops           Stops     `json:"stops"`
	BasePrice       int64     `json:"base_price"`
}

type Leg string

const (
	LegOutbound Leg = "outbound"
	LegReturn   Leg = "return"
)

func (l Leg) Valid() bool {
	return l == LegOutbound || l == LegReturn
}

type TravelClass string

const (
	TravelClassEconomy        TravelClass = "ECONOMY"
	TravelClassPremiumEconomy TravelClass = "PREMIUM_ECONOMY"
	TravelClassBusiness       TravelClass = "BUSINESS"
)

func (c TravelClass) Valid() bool {
	switch c {
	case TravelClassEconomy, TravelClassPremiumEconomy, TravelClassBusiness:
		return true
	}
	return false
}
