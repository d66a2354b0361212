package domain

// Outcome is the classification of a single upstream exchange. It is a
// closed sum: Success, Recoverable, or Terminal. Exhaustive handling is
// done with a type switch over the three variants.
type Outcome interface {
	outcome()
}

// Success carries the mapped report.
type Success struct {
	Report *WeatherReport
}

// Recoverable marks a tier rejection the orchestrator heals on its own by
// downgrading the request mode and retrying once.
type Recoverable struct {
	Reason string
}

// Terminal marks a failure that is surfaced to the caller verbatim and
// never retried. Status carries the originating HTTP status when one was
// received, zero otherwise.
type Terminal struct {
	Err    *WeatherError
	Status int
}

func (Success) outcome()     {}
func (Recoverable) outcome() {}
func (Terminal) outcome()    {}
