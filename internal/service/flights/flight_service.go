package flights

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"golang.org/x/sync/singleflight"
)

type FlightUseCase interface {
	Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error)
}

// Source is the underlying generator of offers.
type Source interface {
	Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error)
}

type OfferCache interface {
	GetOffers(ctx context.Context, key string) ([]domain.FlightOffer, error)
	SetOffers(ctx context.Context, key string, offers []domain.FlightOffer) error
}

// FlightService serves offers for a route and date, caching them so every
// session searching the same key sees the same flights.
type FlightService struct {
	source Source
	cache  OfferCache
	group  singleflight.Group
}

func NewFlightService(source Source, cache OfferCache) *FlightService {
	return &FlightService{source: source, cache: cache}
}

func (s *FlightService) Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error) {
	key := SearchKey(origin, destination, date)

	if s.cache != nil {
		if cached, err := s.cache.GetOffers(ctx, key); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			log.Printf("offer cache read %s: %v", key, err)
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		offers, err := s.source.Generate(ctx, origin, destination, date)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && len(offers) > 0 {
			if err := s.cache.SetOffers(ctx, key, offers); err != nil {
				log.Printf("offer cache write %s: %v", key, err)
			}
		}
		return offers, nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate flights %s: %w", key, err)
	}
	return v.([]domain.FlightOffer), nil
}

func SearchKey(origin, destination string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", origin, destination, date.Format(time.DateOnly))
}

var _ FlightUseCase = (*FlightService)(nil)
