package research

import (
	"github.com/m-mizutani/omnix/pkg/geo"
	"github.com/m-mizutani/omnix/pkg/model"
)

// pinConfidenceUnverified marks a pin taken from the origin table without evidence
const pinConfidenceUnverified = 0.5

// derivePins places claim materials on the map where a claim mentions a place
// that matches a known origin, then adds one unverified pin for every product
// material left without one.
func derivePins(index *geo.Index, product *model.DetectedProduct, claims []model.Claim) []model.OriginPin {
	pins := []model.OriginPin{}
	pinned := make(map[string]struct{})
	seenPlaces := make(map[string]struct{})

	for _, claim := range claims {
		for _, place := range claim.Places {
			if place == "" {
				continue
			}
			if _, ok := seenPlaces[place]; ok {
				continue
			}
			seenPlaces[place] = struct{}{}

			for _, material := range claim.Materials {
				for _, origin := range index.Lookup(material) {
					if !origin.Matches(place) {
						continue
					}
					pins = append(pins, model.OriginPin{
						Material:    material,
						Place:       origin.Place,
						Lat:         origin.Lat,
						Lng:         origin.Lng,
						CitationURL: claim.CitationURL,
						Confidence:  claim.Confidence,
					})
					pinned[material] = struct{}{}
				}
			}
		}
	}

	for _, material := range product.MaterialsUsed {
		if _, ok := pinned[material]; ok {
			continue
		}
		candidates := index.Lookup(material)
		if len(candidates) == 0 {
			continue
		}
		origin := candidates[0]
		pins = append(pins, model.OriginPin{
			Material:    material,
			Place:       origin.Place,
			Lat:         origin.Lat,
			Lng:         origin.Lng,
			CitationURL: "",
			Confidence:  pinConfidenceUnverified,
		})
		pinned[material] = struct{}{}
	}

	return pins
}
