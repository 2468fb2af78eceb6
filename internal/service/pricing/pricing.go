// Package pricing computes per-leg dynamic fares and the tax-inclusive total
// for a round trip.
package pricing

import (
	"math"
	"slices"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
)

const (
	ConvenienceFeePerPax int64 = 200
	PSFPerPax            int64 = 150
	FuelSurchargePerPax  int64 = 500
	GSTPercent           int64 = 5

	MealPricePerPax      int64 = 350
	InsurancePricePerPax int64 = 299
	ExtraBaggagePrice    int64 = 1200
)

// LegPrice applies the advance-purchase, peak-season, weekend, time-of-day
// and class multipliers to baseFare. Only the final product is rounded.
// pax is part of the signature for per-passenger leg pricing and is not used
// by the current formula.
func LegPrice(baseFare int64, offer domain.FlightOffer, asOf time.Time, class domain.TravelClass, pax domain.PassengerCount) int64 {
	_ = pax

	dep := offer.DepartureTime
	price := float64(baseFare)
	price *= AdvancePurchaseFactor(DaysToTravel(asOf, dep))
	price *= PeakSeasonFactor(dep.Month())
	price *= WeekendFactor(dep.Weekday())
	price *= TimeOfDayFactor(dep.Hour())
	price *= ClassFactor(class)

	rounded := int64(math.Round(price))
	if rounded < 0 {
		return 0
	}
	return rounded
}

// DaysToTravel counts calendar days between the date of asOf and the date of
// departure, each taken in its own location.
func DaysToTravel(asOf, departure time.Time) int {
	from := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func AdvancePurchaseFactor(days int) float64 {
	switch {
	case days >= 30:
		return 0.80
	case days >= 15:
		return 0.90
	case days >= 7:
		return 1.00
	default:
		return 1.25
	}
}

var peakMonths = []time.Month{time.October, time.November, time.December, time.January}

func PeakSeasonFactor(month time.Month) float64 {
	if slices.Contains(peakMonths, month) {
		return 1.30
	}
	return 1.00
}

func WeekendFactor(day time.Weekday) float64 {
	switch day {
	case time.Friday, time.Saturday, time.Sunday:
		return 1.20
	}
	return 1.00
}

func TimeOfDayFactor(hour int) float64 {
	switch {
	case hour >= 6 && hour < 8:
		return 1.15
	case hour >= 8 && hour < 12:
		return 1.10
	case hour >= 12 && hour < 16:
		return 1.00
	case hour >= 16 && hour < 20:
		return 1.15
	default:
		return 0.90
	}
}

func ClassFactor(class domain.TravelClass) float64 {
	switch class {
	case domain.TravelClassPremiumEconomy:
		return 1.50
	case domain.TravelClassBusiness:
		return 2.50
	default:
		return 1.00
	}
}

// TotalFare aggregates both legs for every paying passenger. GST is charged
// on the base fare only; fees and add-ons are not taxed.
func TotalFare(outboundPrice, returnPrice int64, pax domain.PassengerCount, addOnsCost int64) domain.FareBreakdown {
	paying := int64(pax.Paying())

	base := (outboundPrice + returnPrice) * paying
	convenience := ConvenienceFeePerPax * paying
	psf := PSFPerPax * paying
	fuel := FuelSurchargePerPax * paying
	gst := float64(base*GSTPercent) / 100

	total := math.Round(float64(base+convenience+psf+fuel+addOnsCost) + gst)

	return domain.FareBreakdown{
		BaseFare:            base,
		ConvenienceFee:      convenience,
		PassengerServiceFee: psf,
		FuelSurcharge:       fuel,
		GST:                 gst,
		AddOns:              addOnsCost,
		Total:               int64(total),
	}
}

// AddOnsCost prices the add-on selection. Meals and insurance are charged
// once per paying passenger, extra baggage is a flat charge.
func AddOnsCost(addOns domain.AddOns, pax domain.PassengerCount) int64 {
	paying := int64(pax.Paying())

	var cost int64
	if addOns.Insurance {
		cost += InsurancePricePerPax * paying
	}
	if len(addOns.Meals) > 0 {
		cost += MealPricePerPax * paying
	}
	if len(addOns.Baggage) > 0 {
		cost += ExtraBaggagePrice
	}
	return cost
}
