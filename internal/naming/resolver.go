// Package naming computes collision-free destination grid names.
package naming

import (
	"context"
	"fmt"
)

// NamePrefix is prepended to every destination grid name.
const NamePrefix = "Intake_"

// NameLookup reports whether a grid name is already taken in the destination
// namespace. It is injected as a capability so the resolver can be tested
// without a real grid store; production callers back it with the store's
// NameExists query.
type NameLookup func(ctx context.Context, name string) (bool, error)

// ResolveName computes the destination name for a template. The base name is
// "Intake_{templateName}". When forceNew is false and the base name is free,
// the base name is used; otherwise versioned candidates "{base}_v2",
// "{base}_v3", … are probed in order and the first free one wins.
//
// The probe walk has no upper bound. The namespace check and the later grid
// creation are not atomic, so callers must serialize imports against the same
// destination.
func ResolveName(ctx context.Context, templateName string, lookup NameLookup, forceNew bool) (string, error) {
	base := NamePrefix + templateName

	if !forceNew {
		exists, err := lookup(ctx, base)
		if err != nil {
			return "", fmt.Errorf("naming: lookup %q: %w", base, err)
		}
		if !exists {
			return base, nil
		}
	}

	for version := 2; ; version++ {
		candidate := fmt.Sprintf("%s_v%d", base, version)
		exists, err := lookup(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("naming: lookup %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
