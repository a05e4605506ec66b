package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoPictures        = errors.New("gallery is empty")
	ErrNoResult          = errors.New("no generated result available")
	ErrGenerateBusy      = errors.New("a generation run is already in progress")
)
