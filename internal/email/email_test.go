package email

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/skyconnect/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedEvent() kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:       kafka.EventBookingConfirmed,
		Code:       "AB12CD",
		Email:      "asha@example.com",
		Total:      8127,
		Passengers: 1,
		Outbound: kafka.LegSummary{
			FlightNumber:  "6E-1234",
			Airline:       "IndiGo",
			From:          "HYD",
			To:            "GOI",
			DepartureTime: time.Date(2025, time.May, 28, 9, 0, 0, 0, time.UTC),
		},
		Persisted: true,
	}
}

func TestCompose(t *testing.T) {
	msg := Compose(confirmedEvent())

	assert.Contains(t, msg, "Your e-ticket has been sent to your email")
	assert.Contains(t, msg, "Booking AB12CD")
	assert.Contains(t, msg, "INR 8,127")
	assert.Contains(t, msg, "IndiGo 6E-1234 HYD-GOI 2025-05-28 09:00")
	assert.NotContains(t, msg, "could not be saved")

	local := confirmedEvent()
	local.Persisted = false
	assert.Contains(t, Compose(local), "could not be saved")
	assert.NotContains(t, Compose(local), "synced")
}

func TestSender_Send(t *testing.T) {
	var lines []string
	s := &Sender{logf: func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}}

	require.NoError(t, s.Send(context.Background(), confirmedEvent()))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "send email to asha@example.com")

	noEmail := confirmedEvent()
	noEmail.Email = ""
	require.NoError(t, s.Send(context.Background(), noEmail))
	assert.Contains(t, lines[1], "no email")

	other := confirmedEvent()
	other.Type = "booking_cancelled"
	require.NoError(t, s.Send(context.Background(), other))
	assert.Len(t, lines, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, confirmedEvent()), context.Canceled)
}
