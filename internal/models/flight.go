package models

type Price struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// Endpoint is one end of a flight segment.
type Endpoint struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
}

type Segment struct {
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
	Carrier      string   `json:"carrier"`
	FlightNumber string   `json:"flight_number"`
}

type Itinerary struct {
	Segments []Segment `json:"segments"`
}

// FlightOffer is a priced option normalized from the upstream offer search.
type FlightOffer struct {
	Price       Price       `json:"price"`
	Itineraries []Itinerary `json:"itineraries"`
}

// FlightResult is the flight service response. Flights is always non-nil
// so consumers can range over it even when Error is set.
type FlightResult struct {
	Status  string        `json:"status"`
	Flights []FlightOffer `json:"flights"`
	Error   string        `json:"error,omitempty"`
}

const (
	FlightStatusSuccess = "success"
	FlightStatusError   = "error"
)
