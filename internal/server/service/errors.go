package service

import "errors"

// Sentinel errors for the service layer. The messages are the exact
// strings clients receive, so casing follows the wire contract.
var (
	ErrMissingName     = errors.New("Missing name")
	ErrMissingType     = errors.New("Missing type")
	ErrMissingData     = errors.New("Missing data")
	ErrParentNotFound  = errors.New("Parent not found")
	ErrParentNotFolder = errors.New("Parent is not a folder")
	ErrMissingEmail    = errors.New("Missing email")
	ErrMissingPassword = errors.New("Missing password")
	ErrAlreadyExists   = errors.New("Already exist")
	ErrUnauthorized    = errors.New("Unauthorized")
	ErrNotFound        = errors.New("Not found")
)
