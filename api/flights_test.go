package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Generate(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, origin, destination, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights?from=hyd&to=goi&date=2025-05-28", nil)

	offers := []domain.FlightOffer{
		{ID: "1", Airline: "IndiGo", FlightNumber: "6E-1234", From: "HYD", To: "GOI", BasePrice: 3500},
		{ID: "2", Airline: "Vistara", FlightNumber: "UK-845", From: "HYD", To: "GOI", BasePrice: 3500},
	}
	date := time.Date(2025, time.May, 28, 0, 0, 0, 0, time.UTC)
	mockService.On("Generate", c.Request.Context(), "HYD", "GOI", date).Return(offers, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "6E-1234")
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_BadRequest(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)

	for _, target := range []string{"/flights?to=goi&date=2025-05-28", "/flights?from=hyd&to=goi&date=tomorrow"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", target, nil)

		handler.search(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	mockService.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightHandler_search_Unavailable(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights?from=HYD&to=GOI&date=2025-05-28", nil)

	mockService.On("Generate", mock.Anything, "HYD", "GOI", mock.Anything).Return(nil, errors.New("context canceled"))

	handler.search(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
