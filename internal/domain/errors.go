package domain

import "errors"

var (
	// ErrInvalidInput marks empty or malformed caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrClassificationFailed marks classifier unavailability or malformed classifier output.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrHarvestFailed marks a harvester that could not produce any items.
	ErrHarvestFailed = errors.New("harvest failed")
	// ErrStoreFull marks an append refused because the configured capacity is exceeded.
	ErrStoreFull = errors.New("review store is full")
)
