package terminology

import "errors"

var (
	// ErrTimeout is returned when the upstream terminology service does not
	// answer within the configured deadline. It maps to 504 with a
	// distinguished "timeout" code so clients can offer a retry.
	ErrTimeout = errors.New("le service de terminologie n'a pas répondu à temps")

	// ErrUpstream is returned for non-timeout upstream failures; the
	// service degrades to the fallback dataset instead of surfacing it.
	ErrUpstream = errors.New("le service de terminologie est indisponible")

	// ErrQueryRequired is returned for blank queries.
	ErrQueryRequired = errors.New("le terme de recherche est obligatoire")
)
