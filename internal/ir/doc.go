// Package ir defines the operation records that flow between the engine, the
// journal and the scenario harness, plus their canonical serialization.
//
// Canonical JSON follows RFC 8785: object keys ordered by UTF-16 code units,
// no HTML escaping, NFC-normalized strings, no floats and no nulls. It is the
// only encoding used to compute content-addressed operation IDs, so replaying
// a journal yields byte-identical IDs.
package ir
