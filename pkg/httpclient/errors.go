package httpclient

import "errors"

var (
	// ErrInitialization marks a client whose engine or handle could not be set up.
	ErrInitialization = errors.New("httpclient: initialization failed")
	// ErrTransport marks a request that did not complete an HTTP round trip.
	ErrTransport = errors.New("httpclient: transport failure")
	// ErrSchemeNotAllowed is reported for URLs outside http and https.
	ErrSchemeNotAllowed = errors.New("httpclient: scheme not allowed")
)
