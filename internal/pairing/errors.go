package pairing

import "errors"

var (
	// ErrMalformedInput is returned by Relay when an inbound frame is not a JSON object
	// with a string "message" field. The frame is dropped; the session stays open.
	ErrMalformedInput = errors.New("malformed input frame")

	// ErrPartnerUnreachable marks a failed send to a partner. It is only ever logged.
	ErrPartnerUnreachable = errors.New("partner unreachable")

	// ErrSessionClosed is returned when a disconnected session is used again.
	ErrSessionClosed = errors.New("session closed")

	// ErrAlreadyConnected is returned when Connect is called twice for one session.
	ErrAlreadyConnected = errors.New("session already connected")
)
