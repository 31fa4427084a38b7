// Package selection picks which nearby aircraft get narrated. Cargo and
// private traffic is filtered out when enough passenger flights exist,
// destinations are scored for how interesting they are to hear about, and a
// greedy diversity pass keeps the same city from being narrated twice.
package selection

import (
	"math"
	"sort"
	"strings"

	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/refdata"
)

// Scoring weights. Proximity is a low-weight plausibility anchor, not a
// ranking: a slightly closer flight to a dull destination must not beat a
// farther one bound for somewhere worth talking about.
const (
	proximityWeight  = 0.15
	populationWeight = 0.45
	funFactBonus     = 0.25
	longHaulWeight   = 0.30

	// duplicateDestinationPenalty dwarfs every positive term, so a
	// duplicate city is only ever chosen when nothing else remains.
	duplicateDestinationPenalty = 10.0

	// longHaulNormKm is the distance at which the long-haul term saturates.
	longHaulNormKm = 9000.0

	// populationNorm is log10 of a megacity-scale population.
	populationNorm = 7.0
)

// Engine selects the top-k aircraft from a raw observation list.
type Engine struct {
	ref *refdata.Store
}

// NewEngine creates a selection engine over the loaded reference tables.
func NewEngine(ref *refdata.Store) *Engine {
	return &Engine{ref: ref}
}

// Select filters, scores and greedily picks up to k candidates. It is
// deterministic for identical inputs: ties break by ascending distance, then
// by position in the input list.
func (e *Engine) Select(observations []models.AircraftObservation, k int, user geo.Point) []models.SelectionCandidate {
	if k <= 0 || len(observations) == 0 {
		return nil
	}

	candidates := make([]models.SelectionCandidate, 0, len(observations))
	for i, obs := range observations {
		candidates = append(candidates, e.newCandidate(obs, i, user))
	}

	pool := e.applyOperatorFilter(candidates, k)
	return e.pickGreedy(pool, k)
}

// newCandidate derives the scoring fields for one observation.
func (e *Engine) newCandidate(obs models.AircraftObservation, index int, user geo.Point) models.SelectionCandidate {
	c := models.SelectionCandidate{
		Aircraft:   obs,
		DistanceKm: obs.DistanceKm,
		Filtered:   obs.IsCargo || obs.IsPrivate,
		InputIndex: index,
	}
	if city, ok := e.ref.CityByName(obs.OriginCity); ok {
		c.OriginCity = city
	}
	if city, ok := e.ref.CityByName(obs.DestinationCity); ok {
		c.DestinationCity = city
	}
	c.InterestScore = e.interestScore(&c, user)
	return c
}

// interestScore rates how much there is to say about where the flight is
// going: bigger cities, cities with fun facts and longer hauls all score
// higher. Flights with an unknown destination score zero.
func (e *Engine) interestScore(c *models.SelectionCandidate, user geo.Point) float64 {
	score := 0.0

	if c.DestinationCity != nil {
		if c.DestinationCity.Population > 0 {
			popTerm := math.Log10(float64(c.DestinationCity.Population)) / populationNorm
			score += populationWeight * math.Min(popTerm, 1.0)
		}
		if len(c.DestinationCity.FunFacts) > 0 {
			score += funFactBonus
		}
	}

	if dest, ok := e.ref.AirportByIATA(c.Aircraft.DestinationAirport); ok {
		haulKm := geo.HaversineKm(user, geo.Point{Lat: dest.Lat, Lng: dest.Lng})
		score += longHaulWeight * math.Min(haulKm/longHaulNormKm, 1.0)
	}

	return score
}

// applyOperatorFilter drops cargo and private candidates, then restores the
// closest dropped ones in ascending distance order if the filter left fewer
// than k. Listeners should never see fewer aircraft than exist just because
// the sky is full of freighters.
func (e *Engine) applyOperatorFilter(candidates []models.SelectionCandidate, k int) []models.SelectionCandidate {
	kept := make([]models.SelectionCandidate, 0, len(candidates))
	dropped := make([]models.SelectionCandidate, 0)
	for _, c := range candidates {
		if c.Filtered {
			dropped = append(dropped, c)
		} else {
			kept = append(kept, c)
		}
	}

	if len(kept) >= k {
		return kept
	}

	sort.SliceStable(dropped, func(i, j int) bool {
		if dropped[i].DistanceKm != dropped[j].DistanceKm {
			return dropped[i].DistanceKm < dropped[j].DistanceKm
		}
		return dropped[i].InputIndex < dropped[j].InputIndex
	})
	for _, c := range dropped {
		if len(kept) >= k {
			break
		}
		kept = append(kept, c)
	}
	return kept
}

// pickGreedy repeatedly takes the best-scoring remaining candidate,
// recomputing diversity penalties against the chosen set each round.
func (e *Engine) pickGreedy(pool []models.SelectionCandidate, k int) []models.SelectionCandidate {
	if len(pool) == 0 {
		return nil
	}

	maxDistance := 0.0
	for _, c := range pool {
		if c.DistanceKm > maxDistance {
			maxDistance = c.DistanceKm
		}
	}

	remaining := make([]models.SelectionCandidate, len(pool))
	copy(remaining, pool)

	selected := make([]models.SelectionCandidate, 0, k)
	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, c := range remaining {
			score := e.roundScore(&c, maxDistance, selected)
			if score > bestScore || (score == bestScore && closerOrEarlier(&c, &remaining[bestIdx])) {
				bestIdx = i
				bestScore = score
			}
		}
		chosen := remaining[bestIdx]
		chosen.Score = bestScore
		selected = append(selected, chosen)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// roundScore is the candidate's score for the current greedy round.
func (e *Engine) roundScore(c *models.SelectionCandidate, maxDistance float64, selected []models.SelectionCandidate) float64 {
	score := c.InterestScore

	if maxDistance > 0 {
		score += proximityWeight * (1.0 - c.DistanceKm/maxDistance)
	}

	if c.Aircraft.DestinationCity != "" {
		for i := range selected {
			if strings.EqualFold(selected[i].Aircraft.DestinationCity, c.Aircraft.DestinationCity) {
				score -= duplicateDestinationPenalty
				break
			}
		}
	}
	return score
}

func closerOrEarlier(a, b *models.SelectionCandidate) bool {
	if a.DistanceKm != b.DistanceKm {
		return a.DistanceKm < b.DistanceKm
	}
	return a.InputIndex < b.InputIndex
}
