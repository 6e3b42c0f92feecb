// Package harness runs watch-list scenarios written in YAML.
//
// A scenario names a registry definition, applies a sequence of operations
// to a fresh engine and checks what came back:
//
//	name: walkthrough
//	description: "Window eviction drops early steps"
//	config: ../configs/watch.cue
//	steps:
//	  - op: advance
//	    sn: 1
//	  - op: add
//	    list: watch
//	    members: [b]
//	  - op: get
//	    list: watch
//	    expect:
//	      members: [b]
//	  - op: advance
//	    sn: 0
//	    expect:
//	      error: NON_MONOTONIC_STEP
//	assertions:
//	  - type: final_state
//	    list: watch
//	    until: true
//	    members: [b]
//	  - type: current_sn
//	    sn: 1
//
// Instead of config, a scenario may carry an inline `registry` block with the
// same fields as the CUE definition.
//
// Every scenario runs against an in-memory journal with a fixed session id,
// so traces and dumps are identical from run to run and can be compared with
// golden files.
package harness
