package config

const (
	// MaxSlugLength is the maximum length for discussion slugs.
	// Slugs appear in URLs, so they stay short.
	MaxSlugLength = 100

	// MaxTitleLength is the maximum length of a discussion title or of a single
	// locale entry in an idea title bundle.
	MaxTitleLength = 255

	// MaxDescriptionLength bounds one locale entry of a description or
	// synthesis text bundle.
	MaxDescriptionLength = 20000

	// MaxTypeNameLength bounds semantic type and link type names.
	MaxTypeNameLength = 128

	// MaxTraversalDepth stops upward walks during publish from running away
	// on a corrupted graph that contains a cycle.
	MaxTraversalDepth = 10000
)
