// Package delivery contains the Delivery aggregate and its dispatch state machine.
//
// A delivery is created in Pending status when a marketplace order needs
// transport. The assignment engine drives it through OfferSent while offers
// are outstanding, into Assigned when a courier accepts, and the courier-facing
// surface then advances PickupConfirmed, EnRoute, and Delivered. NoCourier
// records pool exhaustion (re-triggerable later) and Cancelled records an
// external cancellation.
package delivery
