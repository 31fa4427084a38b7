package models

// FactSource records where a narration's fun fact came from.
type FactSource string

const (
	FactSourceDestination FactSource = "destination"
	FactSourceOrigin      FactSource = "origin"
	FactSourceNone        FactSource = "none"
)

// Narration is the assembled spoken text for one aircraft slot.
type Narration struct {
	Text       string     `json:"text"`
	FactSource FactSource `json:"fact_source"`
	Slot       int        `json:"slot"`
}

// SelectionCandidate wraps an observation with the derived fields the
// selection engine scores on. Created and discarded within one selection call.
type SelectionCandidate struct {
	Aircraft AircraftObservation

	DistanceKm      float64
	OriginCity      *CityRecord
	DestinationCity *CityRecord
	Filtered        bool // dropped by the cargo/private filter, may be restored

	Score         float64
	InterestScore float64

	// InputIndex is the candidate's position in the provider list, used as
	// the final tie break so selection stays stable.
	InputIndex int
}
