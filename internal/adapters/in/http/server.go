// Package http exposes the dispatch application over a REST API built on
// labstack/echo. Handlers translate between HTTP requests and application
// commands and queries; all business rules live below this layer.
package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createCourierHandler        commands.CreateCourierCommandHandler
	setAvailabilityHandler      commands.SetCourierAvailabilityCommandHandler
	reportLocationHandler       commands.ReportCourierLocationCommandHandler
	createDeliveryHandler       commands.CreateDeliveryCommandHandler
	tryNextCourierHandler       *commands.TryNextCourierCommandHandler
	acceptOfferHandler          commands.AcceptOfferCommandHandler
	declineOfferHandler         commands.DeclineOfferCommandHandler
	updateDeliveryStatusHandler commands.UpdateDeliveryStatusCommandHandler
	cancelDeliveryHandler       commands.CancelDeliveryCommandHandler

	// Query handlers
	getAllCouriersHandler      queries.GetAllCouriersQueryHandler
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler
	getCourierStatsHandler     queries.GetCourierStatsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createCourierHandler commands.CreateCourierCommandHandler,
	setAvailabilityHandler commands.SetCourierAvailabilityCommandHandler,
	reportLocationHandler commands.ReportCourierLocationCommandHandler,
	createDeliveryHandler commands.CreateDeliveryCommandHandler,
	tryNextCourierHandler *commands.TryNextCourierCommandHandler,
	acceptOfferHandler commands.AcceptOfferCommandHandler,
	declineOfferHandler commands.DeclineOfferCommandHandler,
	updateDeliveryStatusHandler commands.UpdateDeliveryStatusCommandHandler,
	cancelDeliveryHandler commands.CancelDeliveryCommandHandler,
	getAllCouriersHandler queries.GetAllCouriersQueryHandler,
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler,
	getCourierStatsHandler queries.GetCourierStatsQueryHandler,
) *Server {
	return &Server{
		createCourierHandler:        createCourierHandler,
		setAvailabilityHandler:      setAvailabilityHandler,
		reportLocationHandler:       reportLocationHandler,
		createDeliveryHandler:       createDeliveryHandler,
		tryNextCourierHandler:       tryNextCourierHandler,
		acceptOfferHandler:          acceptOfferHandler,
		declineOfferHandler:         declineOfferHandler,
		updateDeliveryStatusHandler: updateDeliveryStatusHandler,
		cancelDeliveryHandler:       cancelDeliveryHandler,
		getAllCouriersHandler:       getAllCouriersHandler,
		getActiveDeliveriesHandler:  getActiveDeliveriesHandler,
		getCourierStatsHandler:      getCourierStatsHandler,
	}
}

// RegisterRoutes wires all API endpoints onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCouriers)
	api.GET("/couriers/stats", s.GetCourierStats)
	api.PATCH("/couriers/:id/availability", s.SetCourierAvailability)
	api.PATCH("/couriers/:id/location", s.ReportCourierLocation)

	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries/active", s.GetActiveDeliveries)
	api.POST("/deliveries/:id/dispatch", s.DispatchDelivery)
	api.PATCH("/deliveries/:id/status", s.UpdateDeliveryStatus)
	api.DELETE("/deliveries/:id", s.CancelDelivery)

	api.POST("/offers/:id/accept", s.AcceptOffer)
	api.POST("/offers/:id/decline", s.DeclineOffer)

	e.GET("/health", s.Health)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// CreateCourier handles POST /api/v1/couriers - registers a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var body NewCourierRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateCourierCommand(body.Name, body.Phone)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if handleErr := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: cmd.CourierID().String()})
}

// GetCouriers handles GET /api/v1/couriers - retrieves all couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	query := queries.NewGetAllCouriersQuery()

	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve couriers")
	}

	response := make([]CourierResponse, len(couriers))
	for i, c := range couriers {
		response[i] = CourierResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			Phone:     c.Phone,
			Active:    c.Active,
			Available: c.Available,
			Lat:       c.Lat,
			Lng:       c.Lng,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCourierStats handles GET /api/v1/couriers/stats - retrieves fleet counts.
func (s *Server) GetCourierStats(ctx echo.Context) error {
	query := queries.NewGetCourierStatsQuery()

	stats, err := s.getCourierStatsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve courier stats")
	}

	return ctx.JSON(http.StatusOK, CourierStatsResponse{
		Total:     stats.Total,
		Available: stats.Available,
		Busy:      stats.Busy,
		Offline:   stats.Offline,
	})
}

// SetCourierAvailability handles PATCH /api/v1/couriers/:id/availability.
func (s *Server) SetCourierAvailability(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var body AvailabilityRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSetCourierAvailabilityCommand(courierID, body.Available)
	if err != nil {
		return badRequest(ctx, "Invalid availability data: "+err.Error())
	}

	if handleErr := s.setAvailabilityHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReportCourierLocation handles PATCH /api/v1/couriers/:id/location.
func (s *Server) ReportCourierLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var body LocationRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewGeoPoint(body.Lat, body.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewReportCourierLocationCommand(courierID, location)
	if err != nil {
		return badRequest(ctx, "Invalid location data: "+err.Error())
	}

	if handleErr := s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CreateDelivery handles POST /api/v1/deliveries - creates a delivery and
// starts the offer dispatch chain.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var body NewDeliveryRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(body.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	sellerID, err := kernel.UUIDFromString(body.SellerID)
	if err != nil {
		return badRequest(ctx, "Invalid seller id")
	}
	buyerID, err := kernel.UUIDFromString(body.BuyerID)
	if err != nil {
		return badRequest(ctx, "Invalid buyer id")
	}

	pickup, err := placeFromRequest(body.Pickup)
	if err != nil {
		return badRequest(ctx, "Invalid pickup: "+err.Error())
	}
	dropoff, err := placeFromRequest(body.Dropoff)
	if err != nil {
		return badRequest(ctx, "Invalid dropoff: "+err.Error())
	}

	cmd, err := commands.NewCreateDeliveryCommand(orderID, sellerID, buyerID, pickup, dropoff)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if handleErr := s.createDeliveryHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: cmd.DeliveryID().String()})
}

// GetActiveDeliveries handles GET /api/v1/deliveries/active.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	query := queries.NewGetActiveDeliveriesQuery()

	deliveries, err := s.getActiveDeliveriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve deliveries")
	}

	response := make([]DeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		var courierID *string
		if d.CourierID != nil {
			id := d.CourierID.String()
			courierID = &id
		}

		response[i] = DeliveryResponse{
			ID:             d.ID.String(),
			OrderID:        d.OrderID.String(),
			Status:         d.Status,
			CourierID:      courierID,
			PickupAddress:  d.PickupAddress,
			DropoffAddress: d.DropoffAddress,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// DispatchDelivery handles POST /api/v1/deliveries/:id/dispatch - retries the
// offer chain for a delivery that ran out of couriers.
func (s *Server) DispatchDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	cmd, err := commands.NewTryNextCourierCommand(deliveryID)
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	if handleErr := s.tryNextCourierHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusAccepted)
}

// UpdateDeliveryStatus handles PATCH /api/v1/deliveries/:id/status.
func (s *Server) UpdateDeliveryStatus(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var body StatusRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := delivery.StatusFromString(body.Status)
	if err != nil {
		return badRequest(ctx, "Unknown status: "+body.Status)
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(deliveryID, target)
	if err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	if handleErr := s.updateDeliveryStatusHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelDelivery handles DELETE /api/v1/deliveries/:id.
func (s *Server) CancelDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	cmd, err := commands.NewCancelDeliveryCommand(deliveryID)
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	if handleErr := s.cancelDeliveryHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AcceptOffer handles POST /api/v1/offers/:id/accept.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	offerID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	cmd, err := commands.NewAcceptOfferCommand(offerID)
	if err != nil {
		return badRequest(ctx, "Invalid offer id: "+err.Error())
	}

	if handleErr := s.acceptOfferHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeclineOffer handles POST /api/v1/offers/:id/decline.
func (s *Server) DeclineOffer(ctx echo.Context) error {
	offerID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	cmd, err := commands.NewDeclineOfferCommand(offerID)
	if err != nil {
		return badRequest(ctx, "Invalid offer id: "+err.Error())
	}

	if handleErr := s.declineOfferHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return businessError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func placeFromRequest(body PlaceRequest) (delivery.Place, error) {
	var point *kernel.GeoPoint
	if body.Lat != nil && body.Lng != nil {
		p, err := kernel.NewGeoPoint(*body.Lat, *body.Lng)
		if err != nil {
			return delivery.Place{}, err
		}
		point = &p
	}
	return delivery.NewPlace(body.Address, point)
}

// businessError maps application errors onto HTTP status codes.
func businessError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidState):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	default:
		return writeError(ctx, http.StatusInternalServerError, "Internal error")
	}
}

func badRequest(ctx echo.Context, message string) error {
	return writeError(ctx, http.StatusBadRequest, message)
}

func internalError(ctx echo.Context, message string) error {
	return writeError(ctx, http.StatusInternalServerError, message)
}

func writeError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}
