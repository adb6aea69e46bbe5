package handler

// --- Request / Response types ---

type compareRequest struct {
	PickupAddress  string `json:"pickup_address" validate:"required"`
	DropoffAddress string `json:"dropoff_address" validate:"required"`
	PassengerCount int    `json:"passenger_count" validate:"min=1,max=7"`
}

type estimateResponse struct {
	Service       string  `json:"service" example:"Uber"`
	PriceEstimate string  `json:"price_estimate" example:"$23.50"`
	Duration      int     `json:"duration" example:"1800"`
	Distance      float64 `json:"distance" example:"8"`
	Pickup        string  `json:"pickup" example:"Manhattan"`
	Dropoff       string  `json:"dropoff" example:"Brooklyn"`
	Recommended   bool    `json:"recommended"`
	Capacity      string  `json:"capacity" example:"1-4 passengers"`
	AppURL        string  `json:"app_url"`
	WebURL        string  `json:"web_url"`
}

type trackRouteRequest struct {
	PickupAddress  string  `json:"pickup_address" validate:"required"`
	DropoffAddress string  `json:"dropoff_address" validate:"required"`
	PassengerCount int     `json:"passenger_count" validate:"min=1,max=7"`
	PhoneNumber    string  `json:"phone_number" validate:"required,e164" example:"+15551234567"`
	TargetPrice    float64 `json:"target_price" validate:"gt=0" example:"20"`
}

type trackRouteResponse struct {
	Message string `json:"message" example:"Route tracking started"`
	RouteID int64  `json:"route_id" example:"1"`
}

type trackedRouteResponse struct {
	ID             int64   `json:"id"`
	Pickup         string  `json:"pickup"`
	Dropoff        string  `json:"dropoff"`
	PassengerCount int     `json:"passenger_count"`
	PhoneNumber    string  `json:"phone_number"`
	TargetPrice    float64 `json:"target_price"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}

type priceHistoryResponse struct {
	ID        int64   `json:"id"`
	RouteID   int64   `json:"route_id"`
	Service   string  `json:"service"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
