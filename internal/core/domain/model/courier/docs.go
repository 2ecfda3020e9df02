// Package courier contains the Courier aggregate for the dispatch domain.
//
// A courier is an agent eligible to fulfill deliveries. The aggregate tracks
// two independent flags: active (enabled for work at all; couriers are never
// deleted, only deactivated) and available (currently opted in to receive
// offers). The last known geographic location, when reported, feeds the
// nearest-distance selection strategy, and the updatedAt timestamp provides
// the ordering for round-robin and longest-idle selection.
package courier
