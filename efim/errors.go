// Package efim implements the EFIM mining engine from spec.md §4.H: the
// parse-rename-sort-firstSU pipeline and the recursive projected search,
// fused with the sched/task cooperative runtime rather than treating
// concurrency as an afterthought.
package efim

import "fmt"

// Kind classifies a failure per spec.md §7's error taxonomy, so the run
// driver can print "kind: context: cause" and choose an exit code without
// string-matching error messages.
type Kind int

const (
	// KindInput covers file open/parse/encoding failures.
	KindInput Kind = iota
	// KindConfig covers unknown scheduler/allocator modes and other
	// misconfiguration caught before mining starts.
	KindConfig
	// KindResource covers allocator failure and PMEM-without-backing.
	KindResource
	// KindInvariant covers violations the data model itself is supposed
	// to prevent (re-allocation of a shared transaction, out-of-range
	// merge) — always fatal.
	KindInvariant
	// KindInternal covers unreachable states.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputError"
	case KindConfig:
		return "ConfigError"
	case KindResource:
		return "ResourceError"
	case KindInvariant:
		return "InvariantViolation"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the engine's single error type: a Kind plus a one-line context
// string plus the wrapped cause, matching spec.md §7's "print the error
// kind and a one-line context to standard error."
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func inputErr(context string, err error) error {
	return &Error{Kind: KindInput, Context: context, Err: err}
}

func configErr(context string, err error) error {
	return &Error{Kind: KindConfig, Context: context, Err: err}
}

func resourceErr(context string, err error) error {
	return &Error{Kind: KindResource, Context: context, Err: err}
}

func invariantErr(context string, err error) error {
	return &Error{Kind: KindInvariant, Context: context, Err: err}
}

func internalErr(context string, err error) error {
	return &Error{Kind: KindInternal, Context: context, Err: err}
}
