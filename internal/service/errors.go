package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRunInProgress   = errors.New("a research run is already in progress")
)
