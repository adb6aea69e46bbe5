package googlemaps

type valueField struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}

type element struct {
	Status            string      `json:"status"`
	Distance          valueField  `json:"distance"`
	Duration          valueField  `json:"duration"`
	DurationInTraffic *valueField `json:"duration_in_traffic,omitempty"`
}

type row struct {
	Elements []element `json:"elements"`
}

// distanceMatrixResponse is the subset of the Distance Matrix payload we read.
type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Rows         []row  `json:"rows"`
}
