package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/Domenick1991/skyconnect/internal/service/booking"
	"github.com/Domenick1991/skyconnect/internal/ticket"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves the booking wizard. Each route loads the session,
// applies one action and returns the result.
type SessionHandler struct {
	service booking.BookingUseCase
}

type searchRequest struct {
	DepartureDate string             `json:"departure_date"`
	ReturnDate    string             `json:"return_date"`
	Adults        int                `json:"adults"`
	Children      int                `json:"children"`
	Infants       int                `json:"infants"`
	TravelClass   domain.TravelClass `json:"travel_class"`
}

type selectOfferRequest struct {
	OfferID string `json:"offer_id"`
}

type fareResponse struct {
	BaseFare            int64   `json:"base_fare"`
	ConvenienceFee      int64   `json:"convenience_fee"`
	PassengerServiceFee int64   `json:"passenger_service_fee"`
	FuelSurcharge       int64   `json:"fuel_surcharge"`
	GST                 float64 `json:"gst"`
	TaxesAndFees        float64 `json:"taxes_and_fees"`
	AddOns              int64   `json:"add_ons"`
	Total               int64   `json:"total"`
	TotalDisplay        string  `json:"total_display"`
}

type confirmationResponse struct {
	Code         string       `json:"code"`
	Persisted    bool         `json:"persisted"`
	Warning      string       `json:"warning,omitempty"`
	ConfirmedAt  string       `json:"confirmed_at"`
	Fare         fareResponse `json:"fare"`
	Notification string       `json:"notification"`
}

func NewSessionHandler(service booking.BookingUseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/search", h.updateSearch)
	router.POST("/:id/next", h.next)
	router.POST("/:id/back", h.back)
	router.GET("/:id/offers/:leg", h.offers)
	router.PUT("/:id/offers/:leg", h.selectOffer)
	router.PUT("/:id/passengers", h.passengers)
	router.GET("/:id/seats/:leg", h.seats)
	router.POST("/:id/seats/:leg/:seat", h.toggleSeat)
	router.PUT("/:id/addons", h.addOn)
	router.GET("/:id/fare", h.fare)
	router.POST("/:id/confirm", h.confirm)
	router.GET("/:id/ticket", h.ticket)
	router.POST("/:id/reset", h.reset)
}

func (h *SessionHandler) create(c *gin.Context) {
	sess, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) get(c *gin.Context) {
	sess, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) updateSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	criteria, err := req.criteria()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.service.UpdateSearch(c.Request.Context(), c.Param("id"), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) next(c *gin.Context) {
	sess, err := h.service.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) back(c *gin.Context) {
	sess, err := h.service.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) offers(c *gin.Context) {
	offers, err := h.service.Offers(c.Request.Context(), c.Param("id"), domain.Leg(c.Param("leg")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *SessionHandler) selectOffer(c *gin.Context) {
	var req selectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected, err := h.service.SelectOffer(c.Request.Context(), c.Param("id"), domain.Leg(c.Param("leg")), req.OfferID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, selected)
}

func (h *SessionHandler) passengers(c *gin.Context) {
	var req booking.PassengersInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.service.SetPassengers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) seats(c *gin.Context) {
	seats, err := h.service.Seats(c.Request.Context(), c.Param("id"), domain.Leg(c.Param("leg")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}

func (h *SessionHandler) toggleSeat(c *gin.Context) {
	toggle, err := h.service.ToggleSeat(c.Request.Context(), c.Param("id"), domain.Leg(c.Param("leg")), c.Param("seat"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toggle)
}

func (h *SessionHandler) addOn(c *gin.Context) {
	var req booking.AddOnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.service.SetAddOn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) fare(c *gin.Context) {
	fare, err := h.service.Fare(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFareResponse(*fare))
}

func (h *SessionHandler) confirm(c *gin.Context) {
	conf, err := h.service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmationResponse{
		Code:         conf.Code,
		Persisted:    conf.Persisted,
		Warning:      conf.Warning,
		ConfirmedAt:  conf.ConfirmedAt.Format(time.RFC3339),
		Fare:         newFareResponse(conf.Fare),
		Notification: "Your e-ticket has been sent to your email",
	})
}

func (h *SessionHandler) ticket(c *gin.Context) {
	t, err := h.service.Ticket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="SkyConnect_Ticket_%s.pdf"`, t.Code))
	c.Data(http.StatusOK, "application/pdf", t.Content)
}

func (h *SessionHandler) reset(c *gin.Context) {
	sess, err := h.service.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (r searchRequest) criteria() (booking.SearchCriteria, error) {
	dep, err := time.Parse(time.DateOnly, r.DepartureDate)
	if err != nil {
		return booking.SearchCriteria{}, fmt.Errorf("invalid departure_date %q, expected YYYY-MM-DD", r.DepartureDate)
	}
	ret, err := time.Parse(time.DateOnly, r.ReturnDate)
	if err != nil {
		return booking.SearchCriteria{}, fmt.Errorf("invalid return_date %q, expected YYYY-MM-DD", r.ReturnDate)
	}
	class := r.TravelClass
	if class == "" {
		class = domain.TravelClassEconomy
	}
	return booking.SearchCriteria{
		DepartureDate: dep,
		ReturnDate:    ret,
		Passengers:    domain.PassengerCount{Adults: r.Adults, Children: r.Children, Infants: r.Infants},
		TravelClass:   class,
	}, nil
}

func newFareResponse(f domain.FareBreakdown) fareResponse {
	return fareResponse{
		BaseFare:            f.BaseFare,
		ConvenienceFee:      f.ConvenienceFee,
		PassengerServiceFee: f.PassengerServiceFee,
		FuelSurcharge:       f.FuelSurcharge,
		GST:                 f.GST,
		TaxesAndFees:        f.TaxesAndFees(),
		AddOns:              f.AddOns,
		Total:               f.Total,
		TotalDisplay:        ticket.FormatINR(float64(f.Total)),
	}
}
