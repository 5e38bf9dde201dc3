// Package store implements the local materialization of a remote space:
// incoming features are partitioned by geometry kind into tables of one
// embedded SQLite backing file, each table retrofitted with a uniqueness
// constraint over the hub feature ID so that re-ingested features overwrite
// prior versions. The store's provenance (space metadata, connection
// descriptor, tag string, uniqueness token) is persisted beside the backing
// file and round-trips exactly, allowing a later session to re-attach and
// reconstruct the identical partition ordering.
//
// A Store assumes a single logical writer: no two write transactions may be
// open concurrently against one backing file. Independent stores on distinct
// files require no cross-store coordination.
package store
