package dtos

// IPAPIResponse is the raw payload of the ipapi.co geolocation endpoint.
type IPAPIResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country_name"`
	Error     bool    `json:"error,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}
