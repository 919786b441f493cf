package domain

import "errors"

// Business rule rejections. They are normal outcomes, not faults.
var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrAlreadyRegistered = errors.New("student is already signed up")
	ErrActivityFull      = errors.New("activity is full")
	ErrNotRegistered     = errors.New("student is not signed up for this activity")
	ErrLockTimeout       = errors.New("timed out waiting for activity lock")
)
