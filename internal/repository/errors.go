package repository

import "errors"

// Sentinel errors surfaced by compare-and-set updates. A losing concurrent
// writer sees one of these instead of silently overwriting.
var (
	// ErrAlreadyProcessed indicates the approval request reached a terminal
	// state before this update ran.
	ErrAlreadyProcessed = errors.New("approval request already processed")
	// ErrRegistrationActive indicates the registration row is already active.
	ErrRegistrationActive = errors.New("registration already active")
	// ErrRegistrationInactive indicates the registration row is already
	// unregistered.
	ErrRegistrationInactive = errors.New("registration already inactive")
)
