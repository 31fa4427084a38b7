// Package narration turns a selected aircraft into spoken text. The central
// rule is duplicate-destination resolution: a flight arriving in the
// listener's own city gets narrated with facts about where it came from,
// because the listener already knows their own town.
package narration

import (
	"fmt"
	"hash/fnv"
	"strings"

	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/models"
)

// Resolver assembles narration text for selected aircraft.
type Resolver struct {
	units config.Units
}

// NewResolver creates a resolver. Units affect formatting only, never which
// sentences are produced.
func NewResolver(units config.Units) *Resolver {
	return &Resolver{units: units}
}

// Resolve builds the narration for one candidate. Sentences are assembled in
// fixed order: distance, aircraft, route, then an optional fun fact.
func (r *Resolver) Resolve(c models.SelectionCandidate, userCity string, slot int) models.Narration {
	var sentences []string
	sentences = append(sentences, r.distanceSentence(&c))
	if s := r.aircraftSentence(&c); s != "" {
		sentences = append(sentences, s)
	}
	if s := r.routeSentence(&c); s != "" {
		sentences = append(sentences, s)
	}

	factCity, source := r.factCity(&c, userCity)
	if source == models.FactSourceOrigin {
		sentences = append(sentences, fmt.Sprintf(
			"This one is almost home, coming back to %s from %s.",
			c.Aircraft.DestinationCity, c.Aircraft.OriginCity))
	}
	if factCity != nil && len(factCity.FunFacts) > 0 {
		fact := pickFact(factCity.FunFacts, c.Aircraft.ICAO24+c.Aircraft.Callsign)
		sentences = append(sentences, fmt.Sprintf("Here is something about %s: %s", factCity.City, fact))
	} else {
		source = models.FactSourceNone
	}

	return models.Narration{
		Text:       strings.Join(sentences, " "),
		FactSource: source,
		Slot:       slot,
	}
}

// NoAircraft is the narration when the scan found nothing to talk about.
func (r *Resolver) NoAircraft() models.Narration {
	return models.Narration{
		Text:       "The skies above you are quiet right now. No aircraft are passing nearby, but check back in a few minutes.",
		FactSource: models.FactSourceNone,
	}
}

// factCity applies the duplicate-destination rule: when the flight is headed
// to the listener's own city, use the origin's facts instead. Comparison is
// a case-insensitive name match; same-named cities in different regions are
// treated as the same city on purpose.
func (r *Resolver) factCity(c *models.SelectionCandidate, userCity string) (*models.CityRecord, models.FactSource) {
	if userCity != "" && c.Aircraft.DestinationCity != "" &&
		strings.EqualFold(c.Aircraft.DestinationCity, userCity) {
		return c.OriginCity, models.FactSourceOrigin
	}
	if c.DestinationCity != nil {
		return c.DestinationCity, models.FactSourceDestination
	}
	return nil, models.FactSourceNone
}

func (r *Resolver) distanceSentence(c *models.SelectionCandidate) string {
	if r.units == config.UnitsMetric {
		return fmt.Sprintf("There is a plane about %.0f kilometers away from you.", c.DistanceKm)
	}
	return fmt.Sprintf("There is a plane about %.0f miles away from you.", c.Aircraft.DistanceMiles)
}

func (r *Resolver) aircraftSentence(c *models.SelectionCandidate) string {
	name := c.Aircraft.AircraftName
	airline := c.Aircraft.AirlineName

	switch {
	case name != "" && airline != "":
		return fmt.Sprintf("It is a %s flown by %s.", name, airline)
	case name != "":
		return fmt.Sprintf("It is a %s.", name)
	case airline != "":
		return fmt.Sprintf("It is operated by %s.", airline)
	}
	return ""
}

func (r *Resolver) routeSentence(c *models.SelectionCandidate) string {
	origin := c.Aircraft.OriginCity
	dest := c.Aircraft.DestinationCity
	flight := c.Aircraft.FlightNumber
	if flight == "" {
		flight = c.Aircraft.Callsign
	}

	switch {
	case origin != "" && dest != "" && flight != "":
		return fmt.Sprintf("Flight %s is traveling from %s to %s.", flight, origin, dest)
	case origin != "" && dest != "":
		return fmt.Sprintf("It is traveling from %s to %s.", origin, dest)
	case dest != "":
		return fmt.Sprintf("It is on its way to %s.", dest)
	case origin != "":
		return fmt.Sprintf("It took off from %s.", origin)
	}
	return ""
}

// pickFact chooses one fact deterministically per aircraft, so repeated
// narrations of the same flight sound the same while different flights to
// the same city vary.
func pickFact(facts []string, seed string) string {
	if len(facts) == 1 {
		return facts[0]
	}
	h := fnv.New32a()
	h.Write([]byte(seed))
	return facts[h.Sum32()%uint32(len(facts))]
}
