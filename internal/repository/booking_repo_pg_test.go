package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestSaveBooking_RequiresBothLegs(t *testing.T) {
	repo := NewBookingRepository(&pgxpool.Pool{})

	err := repo.SaveBooking(context.Background(), &domain.BookingRecord{}, "AB12CD", domain.FareBreakdown{})

	assert.EqualError(t, err, "booking has no selected flights")
}

func TestPassengerRows_PositionalSeats(t *testing.T) {
	record := &domain.BookingRecord{
		PassengerDetails: []domain.PassengerDetail{
			{FirstName: "Asha", LastName: "Rao", Gender: domain.GenderFemale},
			{FirstName: "Ravi", LastName: "Rao", Gender: domain.GenderMale},
			{FirstName: "Kiran", LastName: "Rao", Gender: domain.GenderOther},
		},
		Seats: domain.SeatSelection{
			Outbound: []string{"4C", "4B"},
			Return:   []string{"9E"},
		},
	}

	rows := passengerRows(record)

	assert.Len(t, rows, 3)
	assert.Equal(t, domain.StoredPassenger{FirstName: "Asha", LastName: "Rao", Gender: domain.GenderFemale, SeatOutbound: "4C", SeatReturn: "9E"}, rows[0])
	assert.Equal(t, "4B", rows[1].SeatOutbound)
	assert.Equal(t, SeatUnassigned, rows[1].SeatReturn)
	assert.Equal(t, SeatUnassigned, rows[2].SeatOutbound)
	assert.Equal(t, SeatUnassigned, rows[2].SeatReturn)
}

// testPool connects to the database named by TEST_DATABASE_URL and creates
// the tables. Tests that need it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func testCode(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM passengers WHERE pnr=$1`, code)
		_, _ = pool.Exec(ctx, `DELETE FROM bookings WHERE pnr=$1`, code)
	})
	return code
}

func savedRecord() *domain.BookingRecord {
	dep := time.Date(2025, time.May, 28, 9, 0, 0, 0, time.UTC)
	return &domain.BookingRecord{
		Outbound: &domain.SelectedOffer{Offer: domain.FlightOffer{ID: "HYD-1", FlightNumber: "6E-512", DepartureTime: dep}},
		Return:   &domain.SelectedOffer{Offer: domain.FlightOffer{ID: "GOI-1", FlightNumber: "UK-731", DepartureTime: dep.AddDate(0, 0, 3)}},
		PassengerDetails: []domain.PassengerDetail{
			{FirstName: "Asha", LastName: "Rao", Gender: domain.GenderFemale},
			{FirstName: "Ravi", LastName: "Rao", Gender: domain.GenderMale},
		},
		Contact: domain.Contact{Email: "asha@example.com", Phone: "+919876543210"},
		Seats:   domain.SeatSelection{Outbound: []string{"4C", "4B"}, Return: []string{"9E"}},
	}
}

func TestPGBookingRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewBookingRepository(pool)
	code := testCode(t, pool)

	require.NoError(t, repo.SaveBooking(ctx, savedRecord(), code, domain.FareBreakdown{Total: 8127}))

	got, err := repo.GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, code, got.Code)
	assert.Equal(t, "HYD-1", got.OutboundFlightID)
	assert.Equal(t, "GOI-1", got.ReturnFlightID)
	assert.Equal(t, int64(8127), got.TotalAmount)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.False(t, got.BookingDate.IsZero())
	require.Len(t, got.Passengers, 2)
	assert.Equal(t, domain.StoredPassenger{FirstName: "Asha", LastName: "Rao", Gender: domain.GenderFemale, SeatOutbound: "4C", SeatReturn: "9E"}, got.Passengers[0])
	assert.Equal(t, domain.StoredPassenger{FirstName: "Ravi", LastName: "Rao", Gender: domain.GenderMale, SeatOutbound: "4B", SeatReturn: SeatUnassigned}, got.Passengers[1])
}

func TestPGBookingRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewBookingRepository(pool)
	code := testCode(t, pool)

	require.NoError(t, repo.SaveBooking(ctx, savedRecord(), code, domain.FareBreakdown{Total: 8127}))

	err := repo.SaveBooking(ctx, savedRecord(), code, domain.FareBreakdown{Total: 999})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	got, err := repo.GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(8127), got.TotalAmount, "first booking is kept")
	assert.Len(t, got.Passengers, 2, "rejected booking wrote no passengers")
}

func TestPGBookingRepository_UnknownCode(t *testing.T) {
	pool := testPool(t)
	repo := NewBookingRepository(pool)

	_, err := repo.GetByCode(context.Background(), "ZZ0000")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
