package export

import "errors"

// Error kinds for the three ways an export can fail. Causes are wrapped so
// errors.Is works on both the kind and the underlying error.
var (
	ErrValidation = errors.New("invalid export request")
	ErrRender     = errors.New("pdf rendering failed")
	ErrStorage    = errors.New("artifact storage failed")
)
