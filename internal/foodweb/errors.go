package foodweb

import "errors"

var (
	// ErrEmpty indicates a web without species.
	ErrEmpty = errors.New("foodweb: web has no species")

	// ErrNotSquare indicates an adjacency matrix whose rows differ in length from S.
	ErrNotSquare = errors.New("foodweb: adjacency matrix is not square")

	// ErrNoProducer indicates a web where every species has prey.
	ErrNoProducer = errors.New("foodweb: web has no producer")

	// ErrDisconnected indicates a consumer with no feeding path to a producer.
	ErrDisconnected = errors.New("foodweb: consumer cannot reach a producer")

	// ErrConnectance indicates a target connectance the niche model cannot produce.
	ErrConnectance = errors.New("foodweb: connectance out of range")

	// ErrMaxAttempts indicates the niche model never produced an acceptable web.
	ErrMaxAttempts = errors.New("foodweb: niche model exceeded max attempts")
)
