package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// PassengerCount holds head counts for a search. Infants travel on a lap and
// are not counted for seats or fares.
type PassengerCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Paying returns the number of passengers that occupy a seat and pay a fare.
func (p PassengerCount) Paying() int {
	return p.Adults + p.Children
}

type PassengerDetail struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    Gender `json:"gender"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SelectedOffer is an offer with the price locked at the moment it was chosen.
type SelectedOffer struct {
	Offer FlightOffer `json:"offer"`
	Price int64       `json:"price"`
}

type SeatSelection struct {
	Outbound []string `json:"outbound"`
	Return   []string `json:"return"`
}

func (s SeatSelection) For(leg Leg) []string {
	if leg == LegReturn {
		return s.Return
	}
	return s.Outbound
}

func (s *SeatSelection) Set(leg Leg, seats []string) {
	if leg == LegReturn {
		s.Return = seats
		return
	}
	s.Outbound = seats
}

type AddOnKind string

const (
	AddOnMeal      AddOnKind = "meal"
	AddOnBaggage   AddOnKind = "baggage"
	AddOnInsurance AddOnKind = "insurance"
)

const (
	MealVeg        = "VEG_MEAL"
	BaggageExtra15 = "EXTRA_15KG"
)

type AddOns struct {
	Meals     []string `json:"meals"`
	Baggage   []string `json:"baggage"`
	Insurance bool     `json:"insurance"`
}

// BookingRecord is the state accumulated by one wizard session.
type BookingRecord struct {
	Origin           string            `json:"origin"`
	Destination      string            `json:"destination"`
	DepartureDate    time.Time         `json:"departure_date"`
	ReturnDate       time.Time         `json:"return_date"`
	Passengers       PassengerCount    `json:"passengers"`
	TravelClass      TravelClass       `json:"travel_class"`
	Outbound         *SelectedOffer    `json:"outbound,omitempty"`
	Return           *SelectedOffer    `json:"return,omitempty"`
	PassengerDetails []PassengerDetail `json:"passenger_details"`
	Contact          Contact           `json:"contact"`
	Seats            SeatSelection     `json:"seats"`
	AddOns           AddOns            `json:"addons"`
}

func (r *BookingRecord) Selected(leg Leg) *SelectedOffer {
	if leg == LegReturn {
		return r.Return
	}
	return r.Outbound
}

// FareBreakdown is derived from the selected legs, passenger counts and
// add-ons. It is recomputed, never edited.
type FareBreakdown struct {
	BaseFare            int64   `json:"base_fare"`
	ConvenienceFee      int64   `json:"convenience_fee"`
	PassengerServiceFee int64   `json:"psf"`
	FuelSurcharge       int64   `json:"fuel_surcharge"`
	GST                 float64 `json:"gst"`
	AddOns              int64   `json:"addons"`
	Total               int64   `json:"total"`
}

// TaxesAndFees is the single "Taxes & Fees" line shown to the customer.
func (f FareBreakdown) TaxesAndFees() float64 {
	return float64(f.ConvenienceFee+f.PassengerServiceFee+f.FuelSurcharge) + f.GST
}

type Confirmation struct {
	Code        string        `json:"code"`
	Fare        FareBreakdown `json:"fare"`
	Persisted   bool          `json:"persisted"`
	Warning     string        `json:"warning,omitempty"`
	ConfirmedAt time.Time     `json:"confirmed_at"`
}

// StoredBooking is what the booking store returns for a confirmation code.
type StoredBooking struct {
	Code             string
	BookingDate      time.Time
	OutboundFlightID string
	ReturnFlightID   string
	TotalAmount      int64
	Email            string
	Phone            string
	Status           BookingStatus
	Passengers       []StoredPassenger
}

type StoredPassenger struct {
	FirstName    string
	LastName     string
	Gender       Gender
	SeatOutbound string
	SeatReturn   string
}
