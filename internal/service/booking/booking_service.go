package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/Domenick1991/skyconnect/internal/flightgen"
	"github.com/Domenick1991/skyconnect/internal/kafka"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateSession(ctx context.Context) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSearch(ctx context.Context, id string, criteria SearchCriteria) (*Session, error)
	Next(ctx context.Context, id string) (*Session, error)
	Back(ctx context.Context, id string) (*Session, error)
	Offers(ctx context.Context, id string, leg domain.Leg) ([]PricedOffer, error)
	SelectOffer(ctx context.Context, id string, leg domain.Leg, offerID string) (*domain.SelectedOffer, error)
	SetPassengers(ctx context.Context, id string, input PassengersInput) (*Session, error)
	Seats(ctx context.Context, id string, leg domain.Leg) ([]SeatView, error)
	ToggleSeat(ctx context.Context, id string, leg domain.Leg, seatID string) (*SeatToggle, error)
	SetAddOn(ctx context.Context, id string, input AddOnInput) (*Session, error)
	Fare(ctx context.Context, id string) (*domain.FareBreakdown, error)
	Confirm(ctx context.Context, id string) (*domain.Confirmation, error)
	Ticket(ctx context.Context, id string) (*Ticket, error)
	Reset(ctx context.Context, id string) (*Session, error)
	GetBooking(ctx context.Context, code string) (*domain.StoredBooking, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, id string, state any) (bool, error)
	LoadSession(ctx context.Context, id string, dst any) error
	SaveSession(ctx context.Context, id string, state any) error
	AcquireSessionLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSessionLock(ctx context.Context, id string) error
}

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	lockRetryDelay  = 20 * time.Millisecond
)

type SeatLayout interface {
	SeatMap
	Layout(leg domain.Leg, offerID string) []flightgen.Seat
}

// BookingStore persists confirmed bookings and reads them back by code.
type BookingStore interface {
	Store
	GetByCode(ctx context.Context, code string) (*domain.StoredBooking, error)
}

type TicketRenderer interface {
	Render(record *domain.BookingRecord, conf domain.Confirmation) ([]byte, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Session is the view of a wizard session returned to callers.
type Session struct {
	ID       string `json:"id"`
	StepName string `json:"step_name"`
	*State
}

type PassengersInput struct {
	Passengers []domain.PassengerDetail `json:"passengers"`
	Contact    domain.Contact           `json:"contact"`
}

type AddOnInput struct {
	Kind    domain.AddOnKind `json:"kind"`
	Item    string           `json:"item"`
	Enabled bool             `json:"enabled"`
}

type SeatView struct {
	flightgen.Seat
	Selected bool `json:"selected"`
}

type SeatToggle struct {
	Leg      domain.Leg `json:"leg"`
	Seat     string     `json:"seat"`
	Selected bool       `json:"selected"`
	Seats    []string   `json:"seats"`
}

type Ticket struct {
	Code    string
	Content []byte
}

type BookingService struct {
	sessions           SessionStore
	flights            FlightSource
	seats              SeatLayout
	store              BookingStore
	renderer           TicketRenderer
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	origin             string
	destination        string
	storeTimeout       time.Duration
	lockTTL            time.Duration
	lockWait           time.Duration
	now                func() time.Time
	newCode            func() string
	newID              func() string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithRoute(origin, destination string) BookingServiceOption {
	return func(s *BookingService) {
		s.origin = origin
		s.destination = destination
	}
}

func WithServiceClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithServiceStoreTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.storeTimeout = d
	}
}

// WithSessionLock sets how long a request may hold a session and how long
// another request waits for it before giving up.
func WithSessionLock(ttl, wait time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
		if wait > 0 {
			s.lockWait = wait
		}
	}
}

func WithCodes(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newCode = gen
	}
}

func WithSessionIDs(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newID = gen
	}
}

func NewBookingService(
	sessions SessionStore,
	flights FlightSource,
	seats SeatLayout,
	store BookingStore,
	renderer TicketRenderer,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		sessions:     sessions,
		flights:      flights,
		seats:        seats,
		store:        store,
		renderer:     renderer,
		producer:     producer,
		bookingTopic: bookingTopic,
		origin:       "HYD",
		destination:  "GOI",
		lockTTL:      defaultLockTTL,
		lockWait:     defaultLockWait,
		now:          time.Now,
		newCode:      GenerateCode,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateSession(ctx context.Context) (*Session, error) {
	id := s.newID()
	state := NewState(s.origin, s.destination, s.now())

	created, err := s.sessions.CreateSession(ctx, id, state)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("session %s already exists", id)
	}

	log.Printf("session %s started %s -> %s", id, s.origin, s.destination)
	return newSession(id, state), nil
}

func (s *BookingService) GetSession(ctx context.Context, id string) (*Session, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSession(id, state), nil
}

func (s *BookingService) UpdateSearch(ctx context.Context, id string, criteria SearchCriteria) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		return w.UpdateSearch(criteria)
	})
}

func (s *BookingService) Next(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		return w.Next(ctx)
	})
}

func (s *BookingService) Back(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		return w.Back()
	})
}

// Offers may fill the session's offer memo, so the session is saved even
// though nothing the user chose has changed.
func (s *BookingService) Offers(ctx context.Context, id string, leg domain.Leg) ([]PricedOffer, error) {
	var offers []PricedOffer
	_, err := s.update(ctx, id, func(w *Wizard) error {
		var err error
		offers, err = w.Offers(ctx, leg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (s *BookingService) SelectOffer(ctx context.Context, id string, leg domain.Leg, offerID string) (*domain.SelectedOffer, error) {
	var selected *domain.SelectedOffer
	_, err := s.update(ctx, id, func(w *Wizard) error {
		var err error
		selected, err = w.SelectOffer(ctx, leg, offerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return selected, nil
}

func (s *BookingService) SetPassengers(ctx context.Context, id string, input PassengersInput) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		return w.SetPassengers(input.Passengers, input.Contact)
	})
}

// Seats lists the cabin of the flight selected for leg, marking the seats
// this session holds.
func (s *BookingService) Seats(ctx context.Context, id string, leg domain.Leg) ([]SeatView, error) {
	if !leg.Valid() {
		return nil, fmt.Errorf("%w: unknown leg %q", domain.ErrValidation, leg)
	}
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	selected := state.Record.Selected(leg)
	if selected == nil {
		return nil, fmt.Errorf("%w: no %s flight selected", domain.ErrValidation, leg)
	}
	if s.seats == nil {
		return nil, fmt.Errorf("%w: seat map is not configured", domain.ErrDataUnavailable)
	}

	held := state.Record.Seats.For(leg)
	layout := s.seats.Layout(leg, selected.Offer.ID)
	views := make([]SeatView, 0, len(layout))
	for _, seat := range layout {
		views = append(views, SeatView{Seat: seat, Selected: slices.Contains(held, seat.ID)})
	}
	return views, nil
}

func (s *BookingService) ToggleSeat(ctx context.Context, id string, leg domain.Leg, seatID string) (*SeatToggle, error) {
	toggle := &SeatToggle{Leg: leg, Seat: seatID}
	sess, err := s.update(ctx, id, func(w *Wizard) error {
		var err error
		toggle.Selected, err = w.ToggleSeat(leg, seatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	toggle.Seats = sess.Record.Seats.For(leg)
	return toggle, nil
}

func (s *BookingService) SetAddOn(ctx context.Context, id string, input AddOnInput) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		return w.SetAddOn(input.Kind, input.Item, input.Enabled)
	})
}

func (s *BookingService) Fare(ctx context.Context, id string) (*domain.FareBreakdown, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Confirmed() {
		fare := state.Confirmation.Fare
		return &fare, nil
	}
	fare, err := s.wizard(state).Fare()
	if err != nil {
		return nil, err
	}
	return &fare, nil
}

// Confirm finalises the session's booking. The confirmation event goes out
// once, when the booking is first confirmed.
func (s *BookingService) Confirm(ctx context.Context, id string) (*domain.Confirmation, error) {
	var (
		conf  *domain.Confirmation
		fresh bool
	)
	sess, err := s.update(ctx, id, func(w *Wizard) error {
		fresh = !w.State().Confirmed()
		var err error
		conf, err = w.Confirm(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if fresh {
		log.Printf("booking %s confirmed, total %d, persisted=%t", conf.Code, conf.Fare.Total, conf.Persisted)
		if err := s.publish(ctx, &sess.Record, conf); err != nil {
			log.Printf("WARNING: failed to publish %s event for booking %s: %v", kafka.EventBookingConfirmed, conf.Code, err)
		}
	}
	return conf, nil
}

func (s *BookingService) Ticket(ctx context.Context, id string) (*Ticket, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !state.Confirmed() {
		return nil, fmt.Errorf("%w: confirm the booking before downloading the ticket", domain.ErrNotConfirmed)
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: ticket rendering is not configured", domain.ErrDataUnavailable)
	}

	code := state.Confirmation.Code
	content, err := s.renderer.Render(&state.Record, *state.Confirmation)
	if err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", code, err)
	}
	return &Ticket{Code: code, Content: content}, nil
}

func (s *BookingService) Reset(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		w.Reset()
		return nil
	})
}

func (s *BookingService) GetBooking(ctx context.Context, code string) (*domain.StoredBooking, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: storage is not configured", domain.ErrPersistence)
	}
	return s.store.GetByCode(ctx, code)
}

func (s *BookingService) load(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrSessionNotFound)
	}
	var state State
	if err := s.sessions.LoadSession(ctx, id, &state); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &state, nil
}

// update runs fn against the session's wizard and saves the result. Nothing
// is saved when fn fails. Updates to one session run one at a time.
func (s *BookingService) update(ctx context.Context, id string, fn func(w *Wizard) error) (*Session, error) {
	if err := s.lock(ctx, id); err != nil {
		return nil, err
	}
	defer s.unlock(ctx, id)

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s.wizard(state)); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveSession(ctx, id, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return newSession(id, state), nil
}

func (s *BookingService) lock(ctx context.Context, id string) error {
	deadline := time.Now().Add(s.lockWait)
	for {
		ok, err := s.sessions.AcquireSessionLock(ctx, id, s.lockTTL)
		if err != nil {
			return fmt.Errorf("lock session %s: %w", id, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", domain.ErrSessionBusy, id)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (s *BookingService) unlock(ctx context.Context, id string) {
	if err := s.sessions.ReleaseSessionLock(context.WithoutCancel(ctx), id); err != nil {
		log.Printf("WARNING: failed to release lock on session %s: %v", id, err)
	}
}

func (s *BookingService) wizard(state *State) *Wizard {
	var store Store
	if s.store != nil {
		store = s.store
	}
	return NewWizard(state, s.flights, s.seats, store,
		WithClock(s.now),
		WithCodeGenerator(s.newCode),
		WithStoreTimeout(s.storeTimeout),
	)
}

func (s *BookingService) publish(ctx context.Context, record *domain.BookingRecord, conf *domain.Confirmation) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:       kafka.EventBookingConfirmed,
		Code:       conf.Code,
		Email:      record.Contact.Email,
		Phone:      record.Contact.Phone,
		Total:      conf.Fare.Total,
		Passengers: record.Passengers.Paying(),
		Outbound:   legSummary(record.Outbound),
		Return:     legSummary(record.Return),
		Persisted:  conf.Persisted,
		OccurredAt: conf.ConfirmedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, conf.Code, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, conf.Code, event)
	}
	return nil
}

func legSummary(sel *domain.SelectedOffer) kafka.LegSummary {
	if sel == nil {
		return kafka.LegSummary{}
	}
	return kafka.LegSummary{
		FlightNumber:  sel.Offer.FlightNumber,
		Airline:       sel.Offer.Airline,
		From:          sel.Offer.From,
		To:            sel.Offer.To,
		DepartureTime: sel.Offer.DepartureTime,
	}
}

func newSession(id string, state *State) *Session {
	return &Session{ID: id, StepName: state.Step.String(), State: state}
}

var _ BookingUseCase = (*BookingService)(nil)
