package providers

import (
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/refdata"
)

// airlineICAOOverrides maps regional operators to the mainline brand their
// aircraft are painted as. Listeners see "Delta", not "Endeavor Air".
var airlineICAOOverrides = map[string]string{
	"EDV": "DAL",
	"PDT": "EGF",
	"JIA": "EGF",
	"ENY": "EGF",
	"GJS": "UAL",
	"QXE": "ASA",
}

// ignoredOperators are dropped entirely; their position feeds report stale
// or duplicated frames often enough to poison results.
var ignoredOperators = map[string]bool{
	"VJA": true,
}

func canonicalAirlineICAO(icao string) string {
	if mapped, ok := airlineICAOOverrides[icao]; ok {
		return mapped
	}
	return icao
}

// enrichObservation fills in everything the upstream payload lacks: airline
// identity and classification, route endpoints, aircraft type, distance from
// the listener and an ETA estimate when the provider reported none.
func enrichObservation(ref *refdata.Store, obs *models.AircraftObservation, center geo.Point) {
	obs.AirlineICAO = canonicalAirlineICAO(obs.AirlineICAO)
	if obs.AirlineName == "" {
		obs.AirlineName = ref.AirlineName(obs.AirlineICAO)
	}
	obs.IsCargo = ref.IsCargoAirline(obs.AirlineICAO)
	obs.IsPrivate = ref.IsPrivateAirline(obs.AirlineICAO)

	obs.OriginCity, obs.OriginCountry = ref.CityCountry(obs.OriginAirport)
	obs.DestinationCity, obs.DestinationCountry = ref.CityCountry(obs.DestinationAirport)

	if obs.AircraftICAO != "" {
		obs.AircraftName = ref.AircraftName(obs.AircraftICAO)
		obs.PassengerCapacity = ref.PassengerCapacity(obs.AircraftICAO)
	}

	pos := geo.Point{Lat: obs.Latitude, Lng: obs.Longitude}
	obs.DistanceKm = geo.HaversineKm(center, pos)
	obs.DistanceMiles = geo.KmToMiles(obs.DistanceKm)

	if obs.ETA == "" {
		obs.ETA = estimateETA(ref, obs)
	}
}

// estimateETA projects an arrival time from the aircraft's position and a
// cruise-speed assumption, padded for descent and taxi. Empty when the
// destination airport is unknown.
func estimateETA(ref *refdata.Store, obs *models.AircraftObservation) string {
	dest, ok := ref.AirportByIATA(obs.DestinationAirport)
	if !ok {
		return ""
	}
	remainingKm := geo.HaversineKm(
		geo.Point{Lat: obs.Latitude, Lng: obs.Longitude},
		geo.Point{Lat: dest.Lat, Lng: dest.Lng},
	)
	flightTime := time.Duration(remainingKm/constants.EstimatedCruiseSpeedKmh*float64(time.Hour)) +
		constants.LandingBufferMinutes*time.Minute
	return time.Now().UTC().Add(flightTime).Format(time.RFC3339)
}

// routePlausible rejects observations whose reported position could not lie
// under the reported route. Flights with an unknown route or unmapped
// endpoints are kept; the filter only acts when it can actually judge.
func routePlausible(ref *refdata.Store, obs *models.AircraftObservation) bool {
	if !obs.HasRoute() {
		return true
	}
	origin, okO := ref.AirportByIATA(obs.OriginAirport)
	dest, okD := ref.AirportByIATA(obs.DestinationAirport)
	if !okO || !okD {
		return true
	}
	return geo.PointNearRoute(
		geo.Point{Lat: obs.Latitude, Lng: obs.Longitude},
		geo.Point{Lat: origin.Lat, Lng: origin.Lng},
		geo.Point{Lat: dest.Lat, Lng: dest.Lng},
	)
}
