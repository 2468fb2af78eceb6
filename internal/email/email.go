package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/skyconnect/internal/kafka"
	"github.com/Domenick1991/skyconnect/internal/ticket"
)

// Sender "delivers" e-ticket notifications by logging them.
type Sender struct {
	logf func(format string, args ...any)
}

func NewSender() *Sender {
	return &Sender{logf: log.Printf}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Type != kafka.EventBookingConfirmed {
		return nil
	}
	if event.Email == "" {
		s.logf("skip notification for booking %s: no email", event.Code)
		return nil
	}
	s.logf("send email to %s: %s", event.Email, Compose(event))
	return nil
}

// Compose builds the notification text for a confirmed booking.
func Compose(event kafka.BookingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your e-ticket has been sent to your email. Booking %s, %d passenger(s), total %s.",
		event.Code, event.Passengers, ticket.FormatINR(float64(event.Total)))
	for _, leg := range []kafka.LegSummary{event.Outbound, event.Return} {
		if leg.FlightNumber == "" {
			continue
		}
		fmt.Fprintf(&b, " %s %s %s-%s %s.", leg.Airline, leg.FlightNumber, leg.From, leg.To, leg.DepartureTime.Format("2006-01-02 15:04"))
	}
	if !event.Persisted {
		b.WriteString(" Note: the booking could not be saved.")
	}
	return b.String()
}
