package dtos

// AirlabsFlightsResponse is the raw payload of the Airlabs /flights endpoint.
type AirlabsFlightsResponse struct {
	Response []AirlabsFlight `json:"response"`
	Error    *AirlabsError   `json:"error,omitempty"`
}

// AirlabsError is the error object Airlabs embeds in otherwise 200 responses.
type AirlabsError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AirlabsFlight is one flight row as Airlabs reports it.
type AirlabsFlight struct {
	Hex          string   `json:"hex"`
	FlightICAO   string   `json:"flight_icao"`
	FlightIATA   string   `json:"flight_iata"`
	FlightNumber string   `json:"flight_number"`
	AirlineICAO  string   `json:"airline_icao"`
	AirlineIATA  string   `json:"airline_iata"`
	AircraftICAO string   `json:"aircraft_icao"`
	RegNumber    string   `json:"reg_number"`
	DepIATA      string   `json:"dep_iata"`
	ArrIATA      string   `json:"arr_iata"`
	ArrTime      string   `json:"arr_time"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Alt          *float64 `json:"alt"`
	Speed        *float64 `json:"speed"`
	Dir          *float64 `json:"dir"`
	Status       string   `json:"status"`
	Updated      int64    `json:"updated"`
}
