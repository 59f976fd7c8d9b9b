package interceptor

// Outcome describes how a request was resolved.
type Outcome string

const (
	// OutcomeBypass means the path did not match, or the method is not GET,
	// and the store was not used.
	OutcomeBypass Outcome = "bypass"

	// OutcomeHit means the response was served from the store.
	OutcomeHit Outcome = "hit"

	// OutcomeStored means the network response was ok and has been stored.
	OutcomeStored Outcome = "stored"

	// OutcomeStoreFailed means the network response was ok but could not
	// be stored. It is still returned to the caller.
	OutcomeStoreFailed Outcome = "store_failed"

	// OutcomePassthrough means the network response was not ok and was not stored.
	OutcomePassthrough Outcome = "passthrough"

	// OutcomeError means a store or network error was returned.
	OutcomeError Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}
