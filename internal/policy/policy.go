// Package policy decides who may act on turfs and bookings.
// Every function is pure over the acting identity and resource ownership.
package policy

import "github.com/nekogravitycat/turf-booking-backend/internal/auth"

func IsAdmin(actor auth.Actor) bool {
	return actor.Role == auth.RoleAdmin
}

// CanCreateTurf allows facility owners and admins to list new turfs.
func CanCreateTurf(actor auth.Actor) bool {
	return actor.Role == auth.RoleOwner || actor.Role == auth.RoleAdmin
}

// CanMutateTurf allows admins and the turf's own owner. Holding the owner
// role is not enough to modify someone else's turf.
func CanMutateTurf(actor auth.Actor, turfOwnerID string) bool {
	if actor.UserID == "" {
		return false
	}
	return IsAdmin(actor) || actor.UserID == turfOwnerID
}

// CanCancelBooking allows the booking's user, admins, and the owner of the booked turf.
func CanCancelBooking(actor auth.Actor, bookingUserID, turfOwnerID string) bool {
	if actor.UserID == "" {
		return false
	}
	if IsAdmin(actor) || actor.UserID == bookingUserID {
		return true
	}
	return actor.Role == auth.RoleOwner && actor.UserID == turfOwnerID
}

// CanViewBooking follows the cancel rule.
func CanViewBooking(actor auth.Actor, bookingUserID, turfOwnerID string) bool {
	return CanCancelBooking(actor, bookingUserID, turfOwnerID)
}

// CanListBookings gates the cross-user booking listing.
func CanListBookings(actor auth.Actor) bool {
	return actor.Role == auth.RoleOwner || actor.Role == auth.RoleAdmin
}

// CanManagePayments gates payment status changes.
func CanManagePayments(actor auth.Actor) bool {
	return IsAdmin(actor)
}
