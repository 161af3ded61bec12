package directory

import "errors"

var (
	// ErrQueryRequired is returned for blank queries.
	ErrQueryRequired = errors.New("le terme de recherche est obligatoire")
)
