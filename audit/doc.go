// Package audit records authentication and authorization outcomes.
//
// A Sink receives one Entry per admission decision. The package provides an
// in-memory trail with per-user queries and a compliance report, a sink that
// writes through observe.Logger, an asynchronous worker-pool sink, and a
// fan-out sink. Callers never depend on delivery: a failing sink is logged
// and the decision stands.
package audit
