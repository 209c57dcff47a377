package domain

import "errors"

var (
	// ErrMissingExternalID marks a raw record without a usable portal reference
	ErrMissingExternalID = errors.New("record has no external id")
	// ErrUnknownSource marks an object key whose prefix maps to no portal
	ErrUnknownSource = errors.New("unknown source prefix")
	// ErrMalformedPayload marks a raw object that is not valid JSON of the
	// expected shape
	ErrMalformedPayload = errors.New("malformed raw payload")
)
