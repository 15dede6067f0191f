package ingestion

import (
	"fmt"

	"github.com/citymuse/wayfinder/core"
)

// POISource is one point of interest as delivered by an upstream source
// (OSM extract, curated list). Description is optional; when empty it
// defaults to "name (type)".
type POISource struct {
	ID          string
	Name        string
	Lat         float64
	Lon         float64
	Type        string
	Tags        []string
	Description string
}

// Node converts the source record into a POI graph node.
func (s *POISource) Node() *core.Node {
	description := s.Description
	if description == "" {
		description = fmt.Sprintf("%s (%s)", s.Name, s.Type)
	}
	tags := s.Tags
	if len(tags) == 0 && s.Type != "" {
		tags = []string{s.Type}
	}
	return &core.Node{
		ID:          s.ID,
		Kind:        core.NodeKindPOI,
		Name:        s.Name,
		Lat:         s.Lat,
		Lon:         s.Lon,
		Tags:        tags,
		Description: description,
	}
}

// LinkNearby creates IS_NEAR edges between stops and POIs, and between POI
// pairs, whose distance is below limitMeters. Edge weight is the distance in
// kilometers. One direction is stored per pair; the graph store traverses
// IS_NEAR bidirectionally.
func LinkNearby(stops, pois []*core.Node, limitMeters float64) []*core.Edge {
	var edges []*core.Edge

	for _, stop := range stops {
		for _, poi := range pois {
			meters := core.HaversineMeters(stop.Lat, stop.Lon, poi.Lat, poi.Lon)
			if meters < limitMeters {
				edges = append(edges, &core.Edge{
					Source: stop.Ref(),
					Target: poi.Ref(),
					Kind:   core.RelIsNear,
					Weight: meters / 1000,
				})
			}
		}
	}

	for i, a := range pois {
		for _, b := range pois[i+1:] {
			meters := core.HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon)
			if meters < limitMeters {
				edges = append(edges, &core.Edge{
					Source: a.Ref(),
					Target: b.Ref(),
					Kind:   core.RelIsNear,
					Weight: meters / 1000,
				})
			}
		}
	}

	return edges
}
