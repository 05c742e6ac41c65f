package types

import "errors"

// Domain errors for type validation
var (
	// Record errors
	ErrInvalidRecord    = errors.New("record must carry exactly the variant named by its kind")
	ErrMissingName      = errors.New("name is required")
	ErrMissingSignature = errors.New("signature is required")

	// Search result errors
	ErrInvalidFunctionID     = errors.New("invalid function ID")
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrMissingPackage        = errors.New("package is required")
)
