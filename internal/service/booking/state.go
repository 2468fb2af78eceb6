package booking

import (
	"fmt"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
)

type Step int

const (
	StepSearch Step = iota + 1
	StepFlightSelection
	StepPassengerDetails
	StepSeatSelection
	StepAddOns
	StepPayment
)

var stepNames = map[Step]string{
	StepSearch:           "SEARCH",
	StepFlightSelection:  "FLIGHT_SELECTION",
	StepPassengerDetails: "PASSENGER_DETAILS",
	StepSeatSelection:    "SEAT_SELECTION",
	StepAddOns:           "ADD_ONS",
	StepPayment:          "PAYMENT",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP(%d)", int(s))
}

// State is everything one wizard session owns. It is stored whole between
// user actions.
type State struct {
	Step         Step                            `json:"step"`
	Record       domain.BookingRecord            `json:"record"`
	Offers       map[string][]domain.FlightOffer `json:"offers,omitempty"`
	Confirmation *domain.Confirmation            `json:"confirmation,omitempty"`
}

// NewState starts a booking with the default search: departure tomorrow,
// return three days later, one adult in economy.
func NewState(origin, destination string, now time.Time) *State {
	today := dateOf(now)
	return &State{
		Step: StepSearch,
		Record: domain.BookingRecord{
			Origin:        origin,
			Destination:   destination,
			DepartureDate: today.AddDate(0, 0, 1),
			ReturnDate:    today.AddDate(0, 0, 4),
			Passengers:    domain.PassengerCount{Adults: 1},
			TravelClass:   domain.TravelClassEconomy,
		},
	}
}

func (s *State) Confirmed() bool {
	return s.Confirmation != nil
}

type SearchCriteria struct {
	DepartureDate time.Time             `json:"departure_date"`
	ReturnDate    time.Time             `json:"return_date"`
	Passengers    domain.PassengerCount `json:"passengers"`
	TravelClass   domain.TravelClass    `json:"travel_class"`
}

// PricedOffer is an offer with the fare it would lock in if selected now.
type PricedOffer struct {
	domain.FlightOffer
	Price int64 `json:"price"`
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func offersKey(origin, destination string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", origin, destination, date.Format(time.DateOnly))
}
