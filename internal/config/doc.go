// Package config loads watch-list registry definitions written in CUE.
//
// A definition is a top-level `registry` field checked against the embedded
// #Registry schema:
//
//	registry: {
//		lists:    ["baseline", "watch", "hold"]
//		universe: ["AAPL", "MSFT", "NVDA"]
//		base_sn:  0
//		windows: watch: 5
//	}
//
// Beyond the schema, Compile rejects duplicate list names, duplicate members
// and windows for lists that do not exist, reporting CUE source positions.
package config
