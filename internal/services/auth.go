package services

import "github.com/staybook/apiserver/types"

// RequireRole fails with an UnauthorizedError unless the actor holds
// the expected role. Pure; no store access.
func RequireRole(actor types.User, role, action string) error {
	if actor.Role != role {
		return &UnauthorizedError{Action: action}
	}
	return nil
}

// RequireOwnership fails with an UnauthorizedError unless the actor is
// the owner of the resource. The action description is surfaced in the
// error; resource existence is never revealed.
func RequireOwnership(actor types.User, ownerID int, action string) error {
	if actor.ID != ownerID {
		return &UnauthorizedError{Action: action}
	}
	return nil
}
