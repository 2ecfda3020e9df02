// Package offer contains the Offer aggregate: a time-boxed proposal of a
// delivery to a specific courier.
//
// Offers resolve to exactly one terminal outcome (accepted, declined, or
// expired). Transition validation on the aggregate is optimistic; the
// single-writer-wins guarantee under concurrent resolution attempts comes
// from the store's status-guarded conditional update.
package offer
