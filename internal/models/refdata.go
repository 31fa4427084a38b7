package models

// AirportRecord is one row of the static airport reference table.
type AirportRecord struct {
	IATA    string  `json:"iata"`
	ICAO    string  `json:"icao,omitempty"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lon"`
}

// CityRecord is one row of the static city reference table.
type CityRecord struct {
	City       string   `json:"city"`
	State      string   `json:"state,omitempty"`
	Country    string   `json:"country"`
	Population int      `json:"population"`
	FunFacts   []string `json:"fun_facts"`
}

// AirlineRecord classifies an operator by ICAO code.
type AirlineRecord struct {
	ICAO    string `json:"icao"`
	Name    string `json:"name"`
	Cargo   bool   `json:"cargo,omitempty"`
	Private bool   `json:"private,omitempty"`
}

// AircraftTypeRecord maps an ICAO type code to a friendly name.
type AircraftTypeRecord struct {
	ICAO     string `json:"icao"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}
