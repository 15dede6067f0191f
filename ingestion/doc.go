// Package ingestion builds snapshots of the city graph from external feeds.
//
// The GTFSLoader parses static GTFS files into Route and Stop nodes with
// SERVES and CONNECTS edges. POISource records from an upstream extract
// become POI nodes, linked to nearby stops and to each other with IS_NEAR
// edges by haversine distance.
//
// The Pipeline ties it together: POI descriptions are embedded concurrently
// on a worker pool, and the complete batch of nodes, edges, and vectors is
// handed to the snapshot loader. Loads are all-or-nothing; a malformed batch
// leaves the prior snapshot untouched.
package ingestion
