package ideagraph

import "context"

// TextBundleRepository stores opaque localized text bundles. Entries map a
// locale to its text. Handles are cloned, never shared, between syntheses.
type TextBundleRepository interface {
	// Create stores a bundle and returns its handle
	Create(ctx context.Context, entries map[string]string) (string, error)

	// Get returns the entries of a bundle
	Get(ctx context.Context, id string) (map[string]string, error)

	// Clone copies a bundle and returns the new handle
	Clone(ctx context.Context, id string) (string, error)
}
