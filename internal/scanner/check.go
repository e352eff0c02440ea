package scanner

import "context"

// Check is one independent unit of probing logic. A Check is bound to
// the shared Transport and target origin when its factory runs and owns
// only its private accumulator of findings; it must not share mutable
// state with other checks.
//
// Run performs an arbitrary sequence of transport calls and returns the
// accumulated findings. A failed probe (request error, unparseable
// response) is "this probe found nothing", not a check failure; Run
// should only return an error when the check as a whole cannot proceed.
// Concurrency across checks is the scanner's responsibility: Run is
// called synchronously on one worker.
type Check interface {
	// Name returns the identifier findings are reported under.
	Name() string

	// Run executes the check and returns its findings.
	Run(ctx context.Context) ([]Finding, error)
}

// Factory builds a Check bound to the shared transport and target
// origin.
type Factory func(t *Transport, origin string) (Check, error)

// Registration pairs a check name with its factory. The scanner runs
// registrations in the order given and is agnostic to how the list was
// assembled (built-ins, plugins, CLI filters).
type Registration struct {
	Name string
	New  Factory
}
