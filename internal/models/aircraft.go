package models

// AircraftObservation is the normalized shape every aircraft provider adapter
// produces. Downstream components never see provider specific payloads.
type AircraftObservation struct {
	ICAO24       string `json:"icao24"`
	Callsign     string `json:"callsign"`
	FlightNumber string `json:"flight_number,omitempty"`

	AirlineICAO string `json:"airline_icao,omitempty"`
	AirlineName string `json:"airline_name,omitempty"`
	IsCargo     bool   `json:"is_cargo_operator"`
	IsPrivate   bool   `json:"is_private_operator"`

	AircraftICAO      string `json:"aircraft_icao,omitempty"`
	AircraftName      string `json:"aircraft,omitempty"`
	PassengerCapacity int    `json:"passenger_capacity,omitempty"`
	Registration      string `json:"aircraft_registration,omitempty"`

	OriginAirport      string `json:"origin_airport,omitempty"`
	OriginCity         string `json:"origin_city,omitempty"`
	OriginCountry      string `json:"origin_country,omitempty"`
	DestinationAirport string `json:"destination_airport,omitempty"`
	DestinationCity    string `json:"destination_city,omitempty"`
	DestinationCountry string `json:"destination_country,omitempty"`

	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	AltitudeFt int     `json:"altitude,omitempty"`
	SpeedKts   int     `json:"velocity,omitempty"`
	HeadingDeg float64 `json:"heading,omitempty"`

	DistanceKm    float64 `json:"distance_km"`
	DistanceMiles float64 `json:"distance_miles"`

	ETA      string `json:"eta,omitempty"`
	Provider string `json:"provider"`
}

// HasRoute reports whether both endpoints of the flight are known.
func (a *AircraftObservation) HasRoute() bool {
	return a.OriginAirport != "" && a.DestinationAirport != ""
}
