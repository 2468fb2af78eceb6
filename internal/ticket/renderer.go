// Package ticket formats a confirmed booking as a printable PDF e-ticket.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/go-pdf/fpdf"
)

const (
	brand   = "SkyConnect"
	tagline = "Your Premium Gateway"

	font       = "Helvetica"
	lineHeight = 7.0
	halfWidth  = 95.0
	fullWidth  = 190.0
)

type Renderer struct {
	// compress deflates page content. Without it the text stays readable
	// in the raw file.
	compress bool
}

func NewRenderer() *Renderer {
	return &Renderer{compress: true}
}

// Render produces the e-ticket for a confirmed booking. The document is
// dated by the confirmation, so downloading it again yields the same ticket.
func (r *Renderer) Render(record *domain.BookingRecord, conf domain.Confirmation) ([]byte, error) {
	if record == nil || record.Outbound == nil || record.Return == nil {
		return nil, fmt.Errorf("%w: booking has no selected flights", domain.ErrValidation)
	}
	if conf.Code == "" {
		return nil, fmt.Errorf("%w: missing booking reference", domain.ErrValidation)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(conf.ConfirmedAt)
	pdf.SetModificationDate(conf.ConfirmedAt)
	pdf.SetTitle(fmt.Sprintf("%s e-ticket %s", brand, conf.Code), false)
	pdf.SetAuthor(brand, false)
	pdf.AddPage()

	pdf.SetFont(font, "B", 22)
	pdf.CellFormat(fullWidth, 10, brand, "", 1, "C", false, 0, "")
	pdf.SetFont(font, "I", 11)
	pdf.CellFormat(fullWidth, lineHeight, tagline, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(font, "B", 13)
	pdf.CellFormat(fullWidth, lineHeight, "Booking Confirmation - PNR: "+conf.Code, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(fullWidth, lineHeight, "Date: "+conf.ConfirmedAt.Format(time.DateOnly), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	flightSection(pdf, "Outbound Flight", record.Outbound.Offer)
	flightSection(pdf, "Return Flight", record.Return.Offer)

	section(pdf, "Passenger Details")
	for _, p := range record.PassengerDetails {
		pdf.CellFormat(fullWidth, lineHeight, fmt.Sprintf("%s %s - %s", p.FirstName, p.LastName, genderLabel(p.Gender)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	fare := conf.Fare
	section(pdf, "Payment Summary")
	line(pdf, "Base Fare", FormatINR(float64(fare.BaseFare)), "")
	line(pdf, "Taxes & Fees", FormatINR(fare.TaxesAndFees()), "")
	line(pdf, "Add-ons", FormatINR(float64(fare.AddOns)), "B")
	pdf.SetFont(font, "B", 12)
	line(pdf, "Total Amount", FormatINR(float64(fare.Total)), "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write ticket %s: %w", conf.Code, err)
	}
	return buf.Bytes(), nil
}

func flightSection(pdf *fpdf.Fpdf, title string, o domain.FlightOffer) {
	section(pdf, title)
	pair(pdf, "Airline: "+o.Airline, "Flight: "+o.FlightNumber)
	pair(pdf, "From: "+o.From, "To: "+o.To)
	pair(pdf, "Dep: "+o.DepartureTime.Format("2006-01-02 15:04"), "Arr: "+o.ArrivalTime.Format("2006-01-02 15:04"))
	pair(pdf, "Duration: "+FormatDuration(o.DurationMinutes), "Stops: "+stopsLabel(o.Stops))
	pdf.Ln(3)
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(font, "B", 12)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(fullWidth, lineHeight+1, title, "TB", 1, "L", true, 0, "")
	pdf.SetFont(font, "", 11)
}

func pair(pdf *fpdf.Fpdf, left, right string) {
	pdf.CellFormat(halfWidth, lineHeight, left, "", 0, "L", false, 0, "")
	pdf.CellFormat(halfWidth, lineHeight, right, "", 1, "L", false, 0, "")
}

// line writes a label with its amount right-aligned. border "B" rules the
// row off from the total below it.
func line(pdf *fpdf.Fpdf, label, value, border string) {
	pdf.CellFormat(halfWidth, lineHeight, label, border, 0, "L", false, 0, "")
	pdf.CellFormat(halfWidth, lineHeight, value, border, 1, "R", false, 0, "")
}

func stopsLabel(s domain.Stops) string {
	if s == domain.StopsOneStop {
		return "1 Stop"
	}
	return "Non-stop"
}

func genderLabel(g domain.Gender) string {
	switch g {
	case domain.GenderMale:
		return "Male"
	case domain.GenderFemale:
		return "Female"
	default:
		return "Other"
	}
}
