package service

import "errors"

// Sentinel errors for collaborator lookups. Handlers translate these into a
// single error event for the acting connection; they never abort the hub.
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
)
