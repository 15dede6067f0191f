package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/citymuse/wayfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeedFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func writeTestFeed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFeedFile(t, dir, "routes.txt",
		"route_id,route_short_name,route_long_name,route_type\n"+
			"HSL:1004,4,Katajanokka - Munkkiniemi,0\n"+
			"HSL:31M1,M1,Matinkylä - Vuosaari,1\n"+
			"HSL:9999,99,Mystery Line,999\n")
	writeFeedFile(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon\n"+
			"HSL:S1,Kamppi,60.1688,24.9310\n"+
			"HSL:S2,Rautatientori,60.1710,24.9414\n"+
			"HSL:S3,Kaivopuisto,60.1560,24.9560\n")
	writeFeedFile(t, dir, "trips.txt",
		"trip_id,route_id,direction_id,trip_headsign\n"+
			"HSL:T1,HSL:1004,0,Munkkiniemi\n")
	writeFeedFile(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence\n"+
			"HSL:T1,07:00:00,07:00:00,HSL:S1,1\n"+
			"HSL:T1,07:02:00,07:02:00,HSL:S2,2\n")

	return dir
}

func TestGTFSLoader_Load(t *testing.T) {
	loader := NewGTFSLoader()
	feed, err := loader.Load(writeTestFeed(t))
	require.NoError(t, err)

	require.Len(t, feed.Routes, 3)
	require.Len(t, feed.Stops, 3)

	routesByID := make(map[string]*core.Node)
	for _, r := range feed.Routes {
		routesByID[r.ID] = r
	}

	// Feed prefix stripped, route types mapped, unknown type falls back to BUS
	tram := routesByID["1004"]
	require.NotNil(t, tram)
	assert.Equal(t, "4", tram.Name)
	assert.Equal(t, "TRAM", tram.Mode)
	assert.Equal(t, core.NodeKindRoute, tram.Kind)
	assert.Equal(t, "METRO", routesByID["31M1"].Mode)
	assert.Equal(t, "BUS", routesByID["9999"].Mode)

	assert.Equal(t, "S1", feed.Stops[0].ID)
	assert.Equal(t, "Kamppi", feed.Stops[0].Name)
	assert.Equal(t, 60.1688, feed.Stops[0].Lat)

	// Trip T1 yields SERVES for both called stops plus one CONNECTS hop
	require.Len(t, feed.Edges, 3)
	var serves, connects []*core.Edge
	for _, e := range feed.Edges {
		switch e.Kind {
		case core.RelServes:
			serves = append(serves, e)
		case core.RelConnects:
			connects = append(connects, e)
		}
	}
	require.Len(t, serves, 2)
	assert.Equal(t, "1004", serves[0].Source.ID)
	assert.Equal(t, "S1", serves[0].Target.ID)
	assert.Equal(t, "S2", serves[1].Target.ID)

	require.Len(t, connects, 1)
	assert.Equal(t, "S1", connects[0].Source.ID)
	assert.Equal(t, "S2", connects[0].Target.ID)
	wantKm := core.HaversineMeters(60.1688, 24.9310, 60.1710, 24.9414) / 1000
	assert.InDelta(t, wantKm, connects[0].Weight, 1e-9)
}

func TestGTFSLoader_MissingRoutes(t *testing.T) {
	dir := t.TempDir()
	writeFeedFile(t, dir, "stops.txt", "stop_id,stop_name,stop_lat,stop_lon\n")

	_, err := NewGTFSLoader().Load(dir)
	assert.Error(t, err)
}

func TestGTFSLoader_MissingStopTimesIsFine(t *testing.T) {
	dir := t.TempDir()
	writeFeedFile(t, dir, "routes.txt",
		"route_id,route_short_name,route_long_name,route_type\nHSL:1004,4,Somewhere,0\n")
	writeFeedFile(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon\nHSL:S1,Kamppi,60.1688,24.9310\n")
	writeFeedFile(t, dir, "trips.txt",
		"trip_id,route_id,direction_id,trip_headsign\nHSL:T1,HSL:1004,0,X\n")

	feed, err := NewGTFSLoader().Load(dir)
	require.NoError(t, err)
	assert.Len(t, feed.Routes, 1)
	assert.Len(t, feed.Stops, 1)
	assert.Empty(t, feed.Edges)
}

func TestGTFSLoader_BadCoordinates(t *testing.T) {
	dir := t.TempDir()
	writeFeedFile(t, dir, "routes.txt",
		"route_id,route_short_name,route_long_name,route_type\nHSL:1,1,X,0\n")
	writeFeedFile(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon\nHSL:S1,Kamppi,sixty,24.93\n")

	_, err := NewGTFSLoader().Load(dir)
	assert.ErrorIs(t, err, ErrMalformedFeed)
}

func TestGTFSLoader_CustomPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFeedFile(t, dir, "routes.txt",
		"route_id,route_short_name,route_long_name,route_type\nVR:R1,R,Rail,109\n")
	writeFeedFile(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon\nVR:S1,Central,60.17,24.94\n")

	feed, err := NewGTFSLoader(WithFeedPrefix("VR:")).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "R1", feed.Routes[0].ID)
	assert.Equal(t, "TRAIN", feed.Routes[0].Mode)
	assert.Equal(t, "S1", feed.Stops[0].ID)
}
