// Package services contains stateless domain services.
//
// Its centerpiece is the SelectionStrategy interface and its implementations,
// which rank available couriers and pick the next one to offer a delivery to.
// Strategies are pure: given the same delivery, candidate pool and set of
// already-offered couriers they always return the same courier, which keeps
// the offer rotation reproducible and easy to test.
package services
