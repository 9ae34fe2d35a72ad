package darwin

// MaxCertitude is the highest certitude a filter reports for a successful
// evaluation. Anything above it is the engine's per-item failure marker.
const MaxCertitude = 100

// Result is one decoded verdict. For a bulk call, each requested item gets
// its own Result, in request order.
type Result struct {
	Certitude uint32
}

// Failed reports whether the engine could not evaluate this item. A failed
// slot in a bulk reply does not affect its siblings.
func (r Result) Failed() bool {
	return r.Certitude > MaxCertitude
}
