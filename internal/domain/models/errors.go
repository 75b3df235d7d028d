package models

import "errors"

// Sentinel errors shared by the services. Handlers map them to HTTP statuses
// with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrOversell           = errors.New("sale exceeds remaining quantity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBusy               = errors.New("operation already in progress")
)
