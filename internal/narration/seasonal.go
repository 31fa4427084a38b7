package narration

import (
	"fmt"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/models"
)

// SantaActive reports whether scans should include the Christmas Eve
// special. Active on December 24th and 25th in the server's timezone.
func SantaActive(now time.Time) bool {
	return now.Month() == time.December && (now.Day() == 24 || now.Day() == 25)
}

// Santa replaces the first slot's narration during the Christmas window.
func (r *Resolver) Santa(slot int, distanceKm float64) models.Narration {
	unit := "miles"
	value := geo.KmToMiles(distanceKm)
	if r.units == config.UnitsMetric {
		unit = "kilometers"
		value = distanceKm
	}

	return models.Narration{
		Text: fmt.Sprintf(
			"Hold on, the scanner is picking up something unusual about %.0f %s away. It is moving far too fast for a plane, and it appears to be pulled by reindeer. Keep your eyes on the sky tonight.",
			value, unit),
		FactSource: models.FactSourceNone,
		Slot:       slot,
	}
}
