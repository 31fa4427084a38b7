// Package refdata loads the static airport, city, airline and aircraft-type
// reference tables. Tables are embedded in the binary, loaded once at startup
// and never mutated, so they are safe to share across requests without locks.
package refdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"dreaming-of-a-jet-plane/scanner/internal/models"
)

//go:embed data/airports.json data/cities.json data/airlines.json data/aircraft_types.json
var dataFS embed.FS

// Store holds the loaded reference tables.
type Store struct {
	airportsByIATA map[string]*models.AirportRecord
	citiesByName   map[string]*models.CityRecord
	airlinesByICAO map[string]*models.AirlineRecord
	aircraftByICAO map[string]*models.AircraftTypeRecord
}

// Load parses the embedded tables. Called once at process start.
func Load() (*Store, error) {
	s := &Store{
		airportsByIATA: make(map[string]*models.AirportRecord),
		citiesByName:   make(map[string]*models.CityRecord),
		airlinesByICAO: make(map[string]*models.AirlineRecord),
		aircraftByICAO: make(map[string]*models.AircraftTypeRecord),
	}

	var airports []models.AirportRecord
	if err := loadJSON("data/airports.json", &airports); err != nil {
		return nil, err
	}
	for i := range airports {
		a := &airports[i]
		if iata := strings.ToUpper(strings.TrimSpace(a.IATA)); iata != "" {
			s.airportsByIATA[iata] = a
		}
	}

	var cities []models.CityRecord
	if err := loadJSON("data/cities.json", &cities); err != nil {
		return nil, err
	}
	for i := range cities {
		c := &cities[i]
		s.citiesByName[strings.ToLower(c.City)] = c
	}

	var airlines []models.AirlineRecord
	if err := loadJSON("data/airlines.json", &airlines); err != nil {
		return nil, err
	}
	for i := range airlines {
		a := &airlines[i]
		s.airlinesByICAO[strings.ToUpper(a.ICAO)] = a
	}

	var types []models.AircraftTypeRecord
	if err := loadJSON("data/aircraft_types.json", &types); err != nil {
		return nil, err
	}
	for i := range types {
		t := &types[i]
		s.aircraftByICAO[strings.ToUpper(t.ICAO)] = t
	}

	return s, nil
}

func loadJSON(name string, v interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read embedded table %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse embedded table %s: %w", name, err)
	}
	return nil
}

// AirportByIATA returns the airport for a 3-letter IATA code.
func (s *Store) AirportByIATA(code string) (*models.AirportRecord, bool) {
	if code == "" {
		return nil, false
	}
	a, ok := s.airportsByIATA[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

// CityCountry returns the city and country of an airport, empty when unknown.
func (s *Store) CityCountry(iata string) (string, string) {
	if a, ok := s.AirportByIATA(iata); ok {
		return a.City, a.Country
	}
	return "", ""
}

// CityByName looks up a city record case-insensitively.
func (s *Store) CityByName(name string) (*models.CityRecord, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	c, ok := s.citiesByName[strings.ToLower(name)]
	return c, ok
}

// FunFacts returns the fun facts for a city, empty when unknown.
func (s *Store) FunFacts(cityName string) []string {
	if c, ok := s.CityByName(cityName); ok {
		return c.FunFacts
	}
	return nil
}

// AirlineName returns the display name of an airline by ICAO code.
func (s *Store) AirlineName(icao string) string {
	if a, ok := s.airlinesByICAO[strings.ToUpper(strings.TrimSpace(icao))]; ok {
		return a.Name
	}
	return ""
}

// IsCargoAirline reports whether the ICAO code belongs to a cargo operator.
func (s *Store) IsCargoAirline(icao string) bool {
	a, ok := s.airlinesByICAO[strings.ToUpper(strings.TrimSpace(icao))]
	return ok && a.Cargo
}

// IsPrivateAirline reports whether the ICAO code belongs to a private or
// charter operator.
func (s *Store) IsPrivateAirline(icao string) bool {
	a, ok := s.airlinesByICAO[strings.ToUpper(strings.TrimSpace(icao))]
	return ok && a.Private
}

// AircraftName returns a friendly name for an ICAO type code, falling back to
// the raw code.
func (s *Store) AircraftName(icaoType string) string {
	if t, ok := s.aircraftByICAO[strings.ToUpper(strings.TrimSpace(icaoType))]; ok {
		return t.Name
	}
	return icaoType
}

// PassengerCapacity returns the typical seat count for a type code, 0 when
// unknown.
func (s *Store) PassengerCapacity(icaoType string) int {
	if t, ok := s.aircraftByICAO[strings.ToUpper(strings.TrimSpace(icaoType))]; ok {
		return t.Capacity
	}
	return 0
}
