package repository

import "errors"

// Sentinel errors the service layer translates into domain errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
