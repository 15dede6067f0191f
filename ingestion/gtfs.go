// Copyright 2025 Citymuse Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/citymuse/wayfinder/core"
)

// modeByRouteType maps GTFS route_type codes (standard and HSL extended) to
// travel modes.
var modeByRouteType = map[string]string{
	"0": "TRAM", "900": "TRAM",
	"1": "METRO", "401": "METRO",
	"3": "BUS", "700": "BUS",
	"4": "FERRY", "1000": "FERRY",
	"109": "TRAIN", "100": "TRAIN",
}

const defaultMode = "BUS"

// GTFSFeed holds the graph material extracted from a static GTFS directory.
type GTFSFeed struct {
	Routes []*core.Node
	Stops  []*core.Node
	// Edges holds SERVES (route -> stop) and CONNECTS (stop -> stop)
	// relationships derived from trips and stop times.
	Edges []*core.Edge
}

// GTFSLoader parses static GTFS files into graph nodes and edges.
type GTFSLoader struct {
	prefix string
	logger *slog.Logger
}

// GTFSOption configures a GTFSLoader.
type GTFSOption func(*GTFSLoader)

// WithFeedPrefix sets the feed id prefix stripped from GTFS identifiers.
// Default is "HSL:".
func WithFeedPrefix(prefix string) GTFSOption {
	return func(l *GTFSLoader) {
		l.prefix = prefix
	}
}

// WithGTFSLogger sets a custom logger.
// Default is slog.Default().
func WithGTFSLogger(logger *slog.Logger) GTFSOption {
	return func(l *GTFSLoader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewGTFSLoader creates a GTFS loader.
func NewGTFSLoader(opts ...GTFSOption) *GTFSLoader {
	l := &GTFSLoader{
		prefix: "HSL:",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses routes.txt, stops.txt, trips.txt, and stop_times.txt under
// dir. Routes and stops are required; trips and stop times are optional and
// their absence just means no SERVES/CONNECTS edges can be derived.
func (l *GTFSLoader) Load(dir string) (*GTFSFeed, error) {
	routes, err := l.loadRoutes(filepath.Join(dir, "routes.txt"))
	if err != nil {
		return nil, err
	}
	stops, err := l.loadStops(filepath.Join(dir, "stops.txt"))
	if err != nil {
		return nil, err
	}

	feed := &GTFSFeed{Routes: routes, Stops: stops}

	tripRoutes, err := l.loadTrips(filepath.Join(dir, "trips.txt"))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		l.logger.Info("trips.txt missing, skipping edge derivation")
		return feed, nil
	}

	edges, err := l.loadStopTimes(filepath.Join(dir, "stop_times.txt"), tripRoutes, stops)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		l.logger.Info("stop_times.txt missing, skipping edge derivation")
		return feed, nil
	}
	feed.Edges = edges

	l.logger.Info("loaded GTFS feed",
		"routes", len(routes), "stops", len(stops), "edges", len(edges))
	return feed, nil
}

func (l *GTFSLoader) loadRoutes(path string) ([]*core.Node, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	routes := make([]*core.Node, 0, len(rows))
	for _, row := range rows {
		id := l.stripPrefix(row["route_id"])
		if id == "" {
			continue
		}
		mode, ok := modeByRouteType[row["route_type"]]
		if !ok {
			mode = defaultMode
		}
		name := row["route_short_name"]
		if name == "" {
			name = row["route_long_name"]
		}
		routes = append(routes, &core.Node{
			ID:          id,
			Kind:        core.NodeKindRoute,
			Name:        name,
			Description: row["route_long_name"],
			Mode:        mode,
		})
	}
	return routes, nil
}

func (l *GTFSLoader) loadStops(path string) ([]*core.Node, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	stops := make([]*core.Node, 0, len(rows))
	for _, row := range rows {
		id := l.stripPrefix(row["stop_id"])
		if id == "" {
			continue
		}
		lat, latErr := strconv.ParseFloat(row["stop_lat"], 64)
		lon, lonErr := strconv.ParseFloat(row["stop_lon"], 64)
		if latErr != nil || lonErr != nil {
			return nil, fmt.Errorf("%w: stop %s has unparseable coordinates", ErrMalformedFeed, id)
		}
		stops = append(stops, &core.Node{
			ID:   id,
			Kind: core.NodeKindStop,
			Name: row["stop_name"],
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stops, nil
}

// loadTrips returns the trip id to route id mapping.
func (l *GTFSLoader) loadTrips(path string) (map[string]string, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	tripRoutes := make(map[string]string, len(rows))
	for _, row := range rows {
		tripID := l.stripPrefix(row["trip_id"])
		routeID := l.stripPrefix(row["route_id"])
		if tripID == "" || routeID == "" {
			continue
		}
		tripRoutes[tripID] = routeID
	}
	return tripRoutes, nil
}

// loadStopTimes derives SERVES and CONNECTS edges. A route SERVES every stop
// its trips call at; consecutive stops of a trip are CONNECTS neighbors
// weighted by their distance in kilometers.
func (l *GTFSLoader) loadStopTimes(path string, tripRoutes map[string]string, stops []*core.Node) ([]*core.Edge, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	stopByID := make(map[string]*core.Node, len(stops))
	for _, stop := range stops {
		stopByID[stop.ID] = stop
	}

	type call struct {
		stopID string
		seq    int
	}
	tripCalls := make(map[string][]call)
	for _, row := range rows {
		tripID := l.stripPrefix(row["trip_id"])
		stopID := l.stripPrefix(row["stop_id"])
		if tripID == "" || stopID == "" {
			continue
		}
		seq, err := strconv.Atoi(row["stop_sequence"])
		if err != nil {
			return nil, fmt.Errorf("%w: trip %s has unparseable stop_sequence", ErrMalformedFeed, tripID)
		}
		tripCalls[tripID] = append(tripCalls[tripID], call{stopID: stopID, seq: seq})
	}

	serves := make(map[[2]string]bool)
	connects := make(map[[2]string]float64)
	for tripID, calls := range tripCalls {
		routeID, ok := tripRoutes[tripID]
		if !ok {
			l.logger.Debug("stop time references unknown trip", "trip", tripID)
			continue
		}
		sort.Slice(calls, func(i, j int) bool { return calls[i].seq < calls[j].seq })

		for i, c := range calls {
			if _, ok := stopByID[c.stopID]; !ok {
				l.logger.Debug("stop time references unknown stop", "stop", c.stopID)
				continue
			}
			serves[[2]string{routeID, c.stopID}] = true

			if i == 0 {
				continue
			}
			prev := calls[i-1]
			from, ok := stopByID[prev.stopID]
			if !ok || prev.stopID == c.stopID {
				continue
			}
			to := stopByID[c.stopID]
			pair := [2]string{prev.stopID, c.stopID}
			weight := core.HaversineMeters(from.Lat, from.Lon, to.Lat, to.Lon) / 1000
			if existing, ok := connects[pair]; !ok || weight < existing {
				connects[pair] = weight
			}
		}
	}

	edges := make([]*core.Edge, 0, len(serves)+len(connects))
	for pair := range serves {
		edges = append(edges, &core.Edge{
			Source: core.NodeRef{Kind: core.NodeKindRoute, ID: pair[0]},
			Target: core.NodeRef{Kind: core.NodeKindStop, ID: pair[1]},
			Kind:   core.RelServes,
		})
	}
	for pair, weight := range connects {
		edges = append(edges, &core.Edge{
			Source: core.NodeRef{Kind: core.NodeKindStop, ID: pair[0]},
			Target: core.NodeRef{Kind: core.NodeKindStop, ID: pair[1]},
			Kind:   core.RelConnects,
			Weight: weight,
		})
	}
	// Map iteration order is random; keep the batch deterministic.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Kind != edges[j].Kind {
			return edges[i].Kind < edges[j].Kind
		}
		if edges[i].Source.ID != edges[j].Source.ID {
			return edges[i].Source.ID < edges[j].Source.ID
		}
		return edges[i].Target.ID < edges[j].Target.ID
	})
	return edges, nil
}

func (l *GTFSLoader) stripPrefix(id string) string {
	if l.prefix != "" && len(id) >= len(l.prefix) && id[:len(l.prefix)] == l.prefix {
		return id[len(l.prefix):]
	}
	return id
}

// readCSV reads a whole GTFS file into header-keyed rows.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedFeed, filepath.Base(path), err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrMalformedFeed, filepath.Base(path), err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
