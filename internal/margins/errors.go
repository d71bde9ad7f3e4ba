package margins

import "errors"

var (
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("margins: transport failure")
	// ErrParse covers bodies that are not JSON or miss required fields.
	ErrParse = errors.New("margins: parse failure")
	// ErrInvalidInput rejects requests the client refuses to send.
	ErrInvalidInput = errors.New("margins: invalid input")
)
