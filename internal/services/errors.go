package services

import "errors"

// Dashboard service errors
var (
	ErrNotLoaded   = errors.New("dashboard not loaded")
	ErrTabNotFound = errors.New("tab not found")
)
