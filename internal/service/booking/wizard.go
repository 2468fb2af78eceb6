package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/Domenick1991/skyconnect/internal/service/pricing"
)

const (
	maxPassengersPerType = 9
	// maxCodeAttempts bounds how many codes Confirm tries when the store
	// reports a collision.
	maxCodeAttempts = 3
)

type FlightSource interface {
	Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error)
}

type SeatMap interface {
	Exists(seatID string) bool
	Available(leg domain.Leg, offerID, seatID string) bool
}

type Store interface {
	SaveBooking(ctx context.Context, record *domain.BookingRecord, code string, fare domain.FareBreakdown) error
}

// Wizard drives one booking session through its six steps. Every method
// validates before it mutates, so a failed call leaves the state untouched.
type Wizard struct {
	state        *State
	flights      FlightSource
	seats        SeatMap
	store        Store
	now          func() time.Time
	newCode      func() string
	storeTimeout time.Duration
}

type WizardOption func(*Wizard)

func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		w.now = now
	}
}

func WithCodeGenerator(gen func() string) WizardOption {
	return func(w *Wizard) {
		w.newCode = gen
	}
}

func WithStoreTimeout(d time.Duration) WizardOption {
	return func(w *Wizard) {
		w.storeTimeout = d
	}
}

func NewWizard(state *State, flights FlightSource, seats SeatMap, store Store, opts ...WizardOption) *Wizard {
	w := &Wizard{
		state:   state,
		flights: flights,
		seats:   seats,
		store:   store,
		now:     time.Now,
		newCode: GenerateCode,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.state.Offers == nil {
		w.state.Offers = make(map[string][]domain.FlightOffer)
	}
	return w
}

func (w *Wizard) State() *State {
	return w.state
}

func (w *Wizard) today() time.Time {
	return dateOf(w.now())
}

func (w *Wizard) UpdateSearch(c SearchCriteria) error {
	if err := w.mutableAt(StepSearch); err != nil {
		return err
	}

	loc := w.now().Location()
	dep := civilDate(c.DepartureDate, loc)
	ret := civilDate(c.ReturnDate, loc)

	switch {
	case !c.TravelClass.Valid():
		return fmt.Errorf("%w: unknown travel class %q", domain.ErrValidation, c.TravelClass)
	case c.Passengers.Adults < 1:
		return fmt.Errorf("%w: at least one adult is required", domain.ErrValidation)
	case c.Passengers.Children < 0 || c.Passengers.Infants < 0:
		return fmt.Errorf("%w: passenger counts cannot be negative", domain.ErrValidation)
	case c.Passengers.Adults > maxPassengersPerType || c.Passengers.Children > maxPassengersPerType || c.Passengers.Infants > maxPassengersPerType:
		return fmt.Errorf("%w: at most %d passengers of each type", domain.ErrValidation, maxPassengersPerType)
	case dep.Before(w.today()):
		return fmt.Errorf("%w: departure date is in the past", domain.ErrValidation)
	case ret.Before(dep):
		return fmt.Errorf("%w: return date is before departure date", domain.ErrValidation)
	}

	r := &w.state.Record
	if !dep.Equal(r.DepartureDate) || !ret.Equal(r.ReturnDate) || c.TravelClass != r.TravelClass {
		r.Outbound, r.Return = nil, nil
		r.Seats = domain.SeatSelection{}
	}
	if c.Passengers.Paying() != r.Passengers.Paying() {
		r.PassengerDetails = nil
		r.Seats = domain.SeatSelection{}
	}

	r.DepartureDate = dep
	r.ReturnDate = ret
	r.Passengers = c.Passengers
	r.TravelClass = c.TravelClass
	return nil
}

// Next advances the cursor by one step if the current step's exit guard
// holds. Leaving the search step also fetches both legs' offers.
func (w *Wizard) Next(ctx context.Context) error {
	if w.state.Confirmed() {
		return domain.ErrAlreadyConfirmed
	}

	switch w.state.Step {
	case StepSearch:
		if err := w.checkSearch(); err != nil {
			return err
		}
		if err := w.loadBothLegs(ctx); err != nil {
			return err
		}
	case StepFlightSelection:
		if w.state.Record.Outbound == nil || w.state.Record.Return == nil {
			return fmt.Errorf("%w: select both outbound and return flights", domain.ErrValidation)
		}
	case StepPassengerDetails:
		if err := w.checkPassengers(); err != nil {
			return err
		}
	case StepSeatSelection, StepAddOns:
	default:
		return fmt.Errorf("%w: %s is the last step", domain.ErrWrongStep, w.state.Step)
	}

	w.state.Step++
	return nil
}

func (w *Wizard) Back() error {
	if w.state.Confirmed() {
		return domain.ErrAlreadyConfirmed
	}
	if w.state.Step <= StepSearch {
		return fmt.Errorf("%w: already at the first step", domain.ErrWrongStep)
	}
	w.state.Step--
	return nil
}

func (w *Wizard) checkSearch() error {
	r := w.state.Record
	switch {
	case r.DepartureDate.Before(w.today()):
		return fmt.Errorf("%w: departure date is in the past", domain.ErrValidation)
	case r.ReturnDate.Before(r.DepartureDate):
		return fmt.Errorf("%w: return date is before departure date", domain.ErrValidation)
	case r.Passengers.Adults < 1:
		return fmt.Errorf("%w: at least one adult is required", domain.ErrValidation)
	}
	return nil
}

func (w *Wizard) checkPassengers() error {
	r := w.state.Record
	if want := r.Passengers.Paying(); len(r.PassengerDetails) != want {
		return fmt.Errorf("%w: details entered for %d of %d passengers", domain.ErrValidation, len(r.PassengerDetails), want)
	}
	for i, p := range r.PassengerDetails {
		if p.FirstName == "" || p.LastName == "" {
			return fmt.Errorf("%w: passenger %d needs a first and last name", domain.ErrValidation, i+1)
		}
	}
	if r.Contact.Email == "" || r.Contact.Phone == "" {
		return fmt.Errorf("%w: contact email and phone are required", domain.ErrValidation)
	}
	return nil
}

func (w *Wizard) legRoute(leg domain.Leg) (origin, destination string, date time.Time) {
	r := w.state.Record
	if leg == domain.LegReturn {
		return r.Destination, r.Origin, r.ReturnDate
	}
	return r.Origin, r.Destination, r.DepartureDate
}

func (w *Wizard) loadBothLegs(ctx context.Context) error {
	loaded := make(map[string][]domain.FlightOffer, 2)
	for _, leg := range []domain.Leg{domain.LegOutbound, domain.LegReturn} {
		origin, destination, date := w.legRoute(leg)
		key := offersKey(origin, destination, date)
		offers, err := w.offersFor(ctx, key, origin, destination, date)
		if err != nil {
			return err
		}
		loaded[key] = offers
	}
	for k, v := range loaded {
		w.state.Offers[k] = v
	}
	return nil
}

// offersFor returns the memoised offers for key, calling the flight source
// only on the first request for that key in this session.
func (w *Wizard) offersFor(ctx context.Context, key, origin, destination string, date time.Time) ([]domain.FlightOffer, error) {
	if offers, ok := w.state.Offers[key]; ok {
		return offers, nil
	}
	if w.flights == nil {
		return nil, fmt.Errorf("%w: flight search is not configured", domain.ErrDataUnavailable)
	}

	offers, err := w.flights.Generate(ctx, origin, destination, date)
	if err != nil {
		log.Printf("flight search %s failed: %v", key, err)
		return nil, fmt.Errorf("%w: search failed for %s to %s, please retry", domain.ErrDataUnavailable, origin, destination)
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: no flights from %s to %s on %s, please retry", domain.ErrDataUnavailable, origin, destination, date.Format(time.DateOnly))
	}
	return offers, nil
}

// Offers lists a leg's flights with the fare each would lock in today.
func (w *Wizard) Offers(ctx context.Context, leg domain.Leg) ([]PricedOffer, error) {
	if !leg.Valid() {
		return nil, fmt.Errorf("%w: unknown leg %q", domain.ErrValidation, leg)
	}
	if w.state.Step < StepFlightSelection {
		return nil, fmt.Errorf("%w: search for flights first", domain.ErrWrongStep)
	}

	origin, destination, date := w.legRoute(leg)
	key := offersKey(origin, destination, date)
	offers, err := w.offersFor(ctx, key, origin, destination, date)
	if err != nil {
		return nil, err
	}
	w.state.Offers[key] = offers

	r := w.state.Record
	today := w.today()
	priced := make([]PricedOffer, 0, len(offers))
	for _, o := range offers {
		priced = append(priced, PricedOffer{
			FlightOffer: o,
			Price:       pricing.LegPrice(o.BasePrice, o, today, r.TravelClass, r.Passengers),
		})
	}
	return priced, nil
}

// SelectOffer picks a flight for a leg and locks its price. The price is not
// recomputed later, even if the booking is paid on another day.
func (w *Wizard) SelectOffer(ctx context.Context, leg domain.Leg, offerID string) (*domain.SelectedOffer, error) {
	if err := w.mutableAt(StepFlightSelection); err != nil {
		return nil, err
	}
	offers, err := w.Offers(ctx, leg)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(offers, func(o PricedOffer) bool { return o.ID == offerID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: flight %q is not in the %s results", domain.ErrValidation, offerID, leg)
	}

	selected := &domain.SelectedOffer{Offer: offers[idx].FlightOffer, Price: offers[idx].Price}
	r := &w.state.Record
	if prev := r.Selected(leg); prev == nil || prev.Offer.ID != offerID {
		r.Seats.Set(leg, nil)
	}
	if leg == domain.LegReturn {
		r.Return = selected
	} else {
		r.Outbound = selected
	}
	return selected, nil
}

func (w *Wizard) SetPassengers(details []domain.PassengerDetail, contact domain.Contact) error {
	if err := w.mutableAt(StepPassengerDetails); err != nil {
		return err
	}
	if want := w.state.Record.Passengers.Paying(); len(details) > want {
		return fmt.Errorf("%w: %d passenger entries for %d passengers", domain.ErrValidation, len(details), want)
	}

	cleaned := make([]domain.PassengerDetail, 0, len(details))
	for i, d := range details {
		if d.Gender == "" {
			d.Gender = domain.GenderOther
		}
		if !d.Gender.Valid() {
			return fmt.Errorf("%w: passenger %d has unknown gender %q", domain.ErrValidation, i+1, d.Gender)
		}
		d.FirstName = strings.TrimSpace(d.FirstName)
		d.LastName = strings.TrimSpace(d.LastName)
		cleaned = append(cleaned, d)
	}

	w.state.Record.PassengerDetails = cleaned
	w.state.Record.Contact = domain.Contact{
		Email: strings.TrimSpace(contact.Email),
		Phone: strings.TrimSpace(contact.Phone),
	}
	return nil
}

// ToggleSeat adds seatID to the leg's selection, or removes it if already
// selected. A leg never holds more seats than paying passengers.
func (w *Wizard) ToggleSeat(leg domain.Leg, seatID string) (bool, error) {
	if err := w.mutableAt(StepSeatSelection); err != nil {
		return false, err
	}
	if !leg.Valid() {
		return false, fmt.Errorf("%w: unknown leg %q", domain.ErrValidation, leg)
	}
	selected := w.state.Record.Selected(leg)
	if selected == nil {
		return false, fmt.Errorf("%w: no %s flight selected", domain.ErrValidation, leg)
	}
	if w.seats == nil || !w.seats.Exists(seatID) {
		return false, fmt.Errorf("%w: no seat %q on this aircraft", domain.ErrValidation, seatID)
	}

	r := &w.state.Record
	current := r.Seats.For(leg)
	if slices.Contains(current, seatID) {
		r.Seats.Set(leg, without(current, seatID))
		return false, nil
	}

	if !w.seats.Available(leg, selected.Offer.ID, seatID) {
		return false, fmt.Errorf("%w: seat %s is occupied", domain.ErrValidation, seatID)
	}
	if limit := r.Passengers.Paying(); len(current) >= limit {
		return false, fmt.Errorf("%w: you can only select %d seats", domain.ErrCapacityExceeded, limit)
	}
	r.Seats.Set(leg, append(slices.Clone(current), seatID))
	return true, nil
}

// SetAddOn switches an add-on on or off. Setting the state an item is
// already in changes nothing.
func (w *Wizard) SetAddOn(kind domain.AddOnKind, item string, enabled bool) error {
	if err := w.mutableAt(StepAddOns); err != nil {
		return err
	}

	a := &w.state.Record.AddOns
	switch kind {
	case domain.AddOnMeal:
		if item != domain.MealVeg {
			return fmt.Errorf("%w: unknown meal %q", domain.ErrValidation, item)
		}
		a.Meals = setMember(a.Meals, item, enabled)
	case domain.AddOnBaggage:
		if item != domain.BaggageExtra15 {
			return fmt.Errorf("%w: unknown baggage option %q", domain.ErrValidation, item)
		}
		a.Baggage = setMember(a.Baggage, item, enabled)
	case domain.AddOnInsurance:
		a.Insurance = enabled
	default:
		return fmt.Errorf("%w: unknown add-on %q", domain.ErrValidation, kind)
	}
	return nil
}

// Fare computes the current breakdown from the locked leg prices.
func (w *Wizard) Fare() (domain.FareBreakdown, error) {
	r := w.state.Record
	if r.Outbound == nil || r.Return == nil {
		return domain.FareBreakdown{}, fmt.Errorf("%w: select both outbound and return flights", domain.ErrValidation)
	}
	addOns := pricing.AddOnsCost(r.AddOns, r.Passengers)
	return pricing.TotalFare(r.Outbound.Price, r.Return.Price, r.Passengers, addOns), nil
}

// Confirm finalises the booking: it fixes the fare, issues a confirmation
// code and hands the booking to the store. A store failure only downgrades
// the confirmation to local-only; the booking stays confirmed. Calling
// Confirm again returns the existing confirmation.
func (w *Wizard) Confirm(ctx context.Context) (*domain.Confirmation, error) {
	if w.state.Confirmed() {
		return w.state.Confirmation, nil
	}
	if w.state.Step != StepPayment {
		return nil, fmt.Errorf("%w: confirm is only available at payment", domain.ErrWrongStep)
	}
	fare, err := w.Fare()
	if err != nil {
		return nil, err
	}

	conf := &domain.Confirmation{
		Code:        w.newCode(),
		Fare:        fare,
		Persisted:   true,
		ConfirmedAt: w.now(),
	}
	err = w.persist(ctx, conf.Code, fare)
	for attempt := 1; errors.Is(err, domain.ErrDuplicateCode) && attempt < maxCodeAttempts; attempt++ {
		log.Printf("code %s is taken, issuing another", conf.Code)
		conf.Code = w.newCode()
		err = w.persist(ctx, conf.Code, fare)
	}
	if err != nil {
		log.Printf("WARNING: booking %s saved locally only: %v", conf.Code, err)
		conf.Persisted = false
		conf.Warning = err.Error()
	}

	w.state.Confirmation = conf
	return conf, nil
}

func (w *Wizard) persist(ctx context.Context, code string, fare domain.FareBreakdown) error {
	if w.store == nil {
		return fmt.Errorf("%w: storage is not configured", domain.ErrPersistence)
	}
	if w.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.storeTimeout)
		defer cancel()
	}
	if err := w.store.SaveBooking(ctx, &w.state.Record, code, fare); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Reset discards the booking and starts a new one on the same route.
func (w *Wizard) Reset() {
	r := w.state.Record
	*w.state = *NewState(r.Origin, r.Destination, w.now())
	w.state.Offers = make(map[string][]domain.FlightOffer)
}

func (w *Wizard) mutableAt(step Step) error {
	if w.state.Confirmed() {
		return domain.ErrAlreadyConfirmed
	}
	if w.state.Step != step {
		return fmt.Errorf("%w: at %s, not %s", domain.ErrWrongStep, w.state.Step, step)
	}
	return nil
}

func civilDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func setMember(set []string, item string, present bool) []string {
	has := slices.Contains(set, item)
	switch {
	case present && !has:
		return append(slices.Clone(set), item)
	case !present && has:
		return without(set, item)
	}
	return set
}

func without(set []string, item string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set {
		if s != item {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
