package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatUnassigned is stored for a passenger with no seat on a leg.
const SeatUnassigned = "N/A"

const uniqueViolation = "23505"

type BookingRepository interface {
	SaveBooking(ctx context.Context, record *domain.BookingRecord, code string, fare domain.FareBreakdown) error
	GetByCode(ctx context.Context, code string) (*domain.StoredBooking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS bookings (
	pnr VARCHAR(10) PRIMARY KEY,
	booking_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	outbound_flight_id VARCHAR(50),
	return_flight_id VARCHAR(50),
	total_amount DECIMAL(10, 2),
	contact_email VARCHAR(100),
	contact_phone VARCHAR(20),
	status VARCHAR(20)
)`, `
CREATE TABLE IF NOT EXISTS passengers (
	id SERIAL PRIMARY KEY,
	pnr VARCHAR(10) REFERENCES bookings(pnr),
	first_name VARCHAR(50),
	last_name VARCHAR(50),
	gender VARCHAR(20),
	seat_outbound VARCHAR(10),
	seat_return VARCHAR(10)
)`,
}

// EnsureSchema creates the bookings and passengers tables if missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SaveBooking writes the booking header and one row per passenger in a
// single transaction. A code that already exists is reported as
// domain.ErrDuplicateCode.
func (r *PGBookingRepository) SaveBooking(ctx context.Context, record *domain.BookingRecord, code string, fare domain.FareBreakdown) error {
	if record.Outbound == nil || record.Return == nil {
		return errors.New("booking has no selected flights")
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO bookings (pnr, outbound_flight_id, return_flight_id, total_amount, contact_email, contact_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		code, record.Outbound.Offer.ID, record.Return.Offer.ID, fare.Total, record.Contact.Email, record.Contact.Phone, domain.BookingStatusConfirmed); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCode, code)
		}
		return err
	}

	for _, p := range passengerRows(record) {
		if _, err := tx.Exec(ctx, `INSERT INTO passengers (pnr, first_name, last_name, gender, seat_outbound, seat_return)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			code, p.FirstName, p.LastName, p.Gender, p.SeatOutbound, p.SeatReturn); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByCode(ctx context.Context, code string) (*domain.StoredBooking, error) {
	row := r.db.QueryRow(ctx, `SELECT pnr, booking_date, outbound_flight_id, return_flight_id, total_amount::bigint, contact_email, contact_phone, status FROM bookings WHERE pnr=$1`, code)
	var b domain.StoredBooking
	if err := row.Scan(&b.Code, &b.BookingDate, &b.OutboundFlightID, &b.ReturnFlightID, &b.TotalAmount, &b.Email, &b.Phone, &b.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT first_name, last_name, gender, seat_outbound, seat_return FROM passengers WHERE pnr=$1 ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.StoredPassenger
		if err := rows.Scan(&p.FirstName, &p.LastName, &p.Gender, &p.SeatOutbound, &p.SeatReturn); err != nil {
			return nil, err
		}
		b.Passengers = append(b.Passengers, p)
	}
	return &b, rows.Err()
}

// passengerRows pairs the i-th passenger with the i-th selected seat on each
// leg. Seats are not chosen per passenger, so this is positional only.
func passengerRows(record *domain.BookingRecord) []domain.StoredPassenger {
	rows := make([]domain.StoredPassenger, 0, len(record.PassengerDetails))
	for i, p := range record.PassengerDetails {
		rows = append(rows, domain.StoredPassenger{
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Gender:       p.Gender,
			SeatOutbound: seatAt(record.Seats.Outbound, i),
			SeatReturn:   seatAt(record.Seats.Return, i),
		})
	}
	return rows
}

func seatAt(seats []string, i int) string {
	if i < len(seats) {
		return seats[i]
	}
	return SeatUnassigned
}

var _ BookingRepository = (*PGBookingRepository)(nil)
