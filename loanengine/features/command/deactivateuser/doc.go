// Package deactivateuser implements the Deactivate User use case: an admin soft-deletes a user.
//
// A deactivated user can neither log in nor borrow. Their loans are kept and stay visible to admins.
package deactivateuser
