package refdata

import "testing"

func TestLoad(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Expected embedded tables to load, got %v", err)
	}

	if _, ok := s.AirportByIATA("JFK"); !ok {
		t.Error("Expected JFK in airport table")
	}
	if _, ok := s.AirportByIATA("jfk"); !ok {
		t.Error("Airport lookup should be case-insensitive")
	}
	if _, ok := s.AirportByIATA(""); ok {
		t.Error("Empty code should not resolve")
	}
}

func TestCityCountry(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	city, country := s.CityCountry("LHR")
	if city != "London" || country != "United Kingdom" {
		t.Errorf("Expected London/United Kingdom for LHR, got %s/%s", city, country)
	}

	city, country = s.CityCountry("ZZZ")
	if city != "" || country != "" {
		t.Error("Unknown airport should return empty city and country")
	}
}

func TestCityByName_CaseInsensitive(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	c, ok := s.CityByName("tokyo")
	if !ok {
		t.Fatal("Expected tokyo lookup to succeed")
	}
	if c.City != "Tokyo" {
		t.Errorf("Expected Tokyo, got %s", c.City)
	}
	if len(c.FunFacts) == 0 {
		t.Error("Expected Tokyo to have fun facts")
	}
	if c.Population == 0 {
		t.Error("Expected Tokyo to have a population")
	}
}

func TestAirlineClassification(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if !s.IsCargoAirline("FDX") {
		t.Error("FedEx should be classified cargo")
	}
	if s.IsCargoAirline("BAW") {
		t.Error("British Airways should not be classified cargo")
	}
	if !s.IsPrivateAirline("EJA") {
		t.Error("NetJets should be classified private")
	}
	if s.AirlineName("UAE") != "Emirates" {
		t.Errorf("Expected Emirates for UAE, got %s", s.AirlineName("UAE"))
	}
	if s.AirlineName("???") != "" {
		t.Error("Unknown airline should return empty name")
	}
}

func TestAircraftTypes(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if s.AircraftName("B77W") != "Boeing 777-300ER" {
		t.Errorf("Unexpected name for B77W: %s", s.AircraftName("B77W"))
	}
	// Unknown types fall back to the raw code
	if s.AircraftName("ZZZZ") != "ZZZZ" {
		t.Errorf("Unknown type should fall back to raw code, got %s", s.AircraftName("ZZZZ"))
	}
	if s.PassengerCapacity("A388") != 525 {
		t.Errorf("Unexpected capacity for A388: %d", s.PassengerCapacity("A388"))
	}
}
