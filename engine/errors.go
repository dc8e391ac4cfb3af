package engine

import "errors"

// Sentinel error kinds. Callers should use errors.Is to classify a failure;
// the concrete error returned by a given call also carries a human-readable
// wrapped message with the offending value.
var (
	// ErrInvalidArgument covers missing/out-of-range/non-finite arguments:
	// an absent model name or token, an empty facility name, a non-positive
	// server count, or a negative/NaN/infinite delay. Stream-index and
	// sampler guard failures come from the rng package as
	// *rng.InvalidArgument and do not match this sentinel.
	ErrInvalidArgument = errors.New("engine: invalid argument")

	// ErrUnknownHandle is returned when a FacilityHandle does not refer to
	// a registered facility.
	ErrUnknownHandle = errors.New("engine: unknown facility handle")

	// ErrStateError covers Release of a facility by a token holding no
	// server.
	ErrStateError = errors.New("engine: invalid state")
)
