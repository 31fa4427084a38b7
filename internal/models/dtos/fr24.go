package dtos

// FR24PositionsResponse is the raw payload of the FlightRadar24
// live/flight-positions/full endpoint.
type FR24PositionsResponse struct {
	Data []FR24Flight `json:"data"`
}

// FR24Flight is one flight row as FlightRadar24 reports it.
type FR24Flight struct {
	Hex       string   `json:"hex"`
	Callsign  string   `json:"callsign"`
	Flight    string   `json:"flight"`
	PaintedAs string   `json:"painted_as"`
	Type      string   `json:"type"`
	Reg       string   `json:"reg"`
	OrigIATA  string   `json:"orig_iata"`
	DestIATA  string   `json:"dest_iata"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Alt       float64  `json:"alt"`
	GSpeed    float64  `json:"gspeed"`
	Track     float64  `json:"track"`
	ETA       string   `json:"eta"`
}
