package emergency

import (
	"fmt"
	"math"
	"sort"

	"github.com/carelink/healthcare-portal/internal/geo"
	"github.com/carelink/healthcare-portal/internal/hospital"
)

// assumedSpeedKmh is the average city-traffic speed used for ETA estimates.
// It feeds directly into the triage ordering shown to callers, so change it
// with care.
const assumedSpeedKmh = 25.0

// DistancePending is shown while the caller's location is not yet known.
const DistancePending = "Calculating..."

// ETAUnknown is shown when no distance could be computed.
const ETAUnknown = "N/A"

// RankedHospital is a directory entry annotated with triage ordering data.
type RankedHospital struct {
	hospital.Hospital

	// DistanceKm is +Inf when the reference point is unknown.
	DistanceKm      float64
	DistanceKnown   bool
	DisplayDistance string
	ETAMinutes      int
	ETA             string
}

// Rank orders hospitals by proximity to ref for emergency triage display.
//
// Entries without coordinates are dropped outright: a facility that cannot
// be placed on the map must not appear between real results. When ref is
// nil every distance is unknown and the input order is preserved. The sort
// is stable and treats unknown distances as +Inf, so unknowns always land
// after every known distance.
func Rank(ref *geo.Point, hospitals []hospital.Hospital) []RankedHospital {
	ranked := make([]RankedHospital, 0, len(hospitals))

	for _, h := range hospitals {
		if h.Coordinates == nil {
			continue
		}

		rh := RankedHospital{
			Hospital:        h,
			DistanceKm:      math.Inf(1),
			DisplayDistance: DistancePending,
			ETA:             ETAUnknown,
		}

		if ref != nil {
			d := geo.DistanceKm(*ref, *h.Coordinates)
			rh.DistanceKm = d
			rh.DistanceKnown = true
			rh.DisplayDistance = formatDistance(d)
			rh.ETAMinutes = etaMinutes(d)
			rh.ETA = fmt.Sprintf("%d mins", rh.ETAMinutes)
		}

		ranked = append(ranked, rh)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}

// formatDistance renders sub-kilometre distances in metres and everything
// else in kilometres to one decimal place.
func formatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%.0f m", distanceKm*1000)
	}
	return fmt.Sprintf("%.1f km", distanceKm)
}

func etaMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / assumedSpeedKmh * 60))
}
