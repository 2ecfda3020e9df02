package http

// Request and response bodies for the public HTTP API.

// NewCourierRequest is the body for courier registration.
type NewCourierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AvailabilityRequest is the body for the availability toggle.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// LocationRequest is the body for a courier location report.
type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceRequest describes one endpoint of a delivery.
type PlaceRequest struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// NewDeliveryRequest is the body for delivery creation.
type NewDeliveryRequest struct {
	OrderID  string       `json:"order_id"`
	SellerID string       `json:"seller_id"`
	BuyerID  string       `json:"buyer_id"`
	Pickup   PlaceRequest `json:"pickup"`
	Dropoff  PlaceRequest `json:"dropoff"`
}

// StatusRequest is the body for a delivery progress update.
type StatusRequest struct {
	Status string `json:"status"`
}

// CourierResponse represents a courier in API responses.
type CourierResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Active    bool     `json:"active"`
	Available bool     `json:"available"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// CourierStatsResponse holds aggregate fleet counts.
type CourierStatsResponse struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Busy      int `json:"busy"`
	Offline   int `json:"offline"`
}

// DeliveryResponse represents an in-flight delivery in API responses.
type DeliveryResponse struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	CourierID      *string `json:"courier_id,omitempty"`
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
}

// CreatedResponse returns the identifier of a newly created resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// Error is the uniform error body for all failure responses.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
