package session

import "github.com/dmitrijs2005/fintrack/internal/client/models"

// State is the session state seen by the UI. It is one of Initializing,
// Unauthenticated or Authenticated.
type State interface {
	isState()
}

// Initializing is reported while bootstrap has not finished.
type Initializing struct{}

// Unauthenticated: no usable access credential.
type Unauthenticated struct{}

// Authenticated: a valid access credential is stored. Profile is meaningful
// only when ProfileLoaded is true.
type Authenticated struct {
	Profile       models.User
	ProfileLoaded bool
}

func (Initializing) isState()    {}
func (Unauthenticated) isState() {}
func (Authenticated) isState()   {}

// Derive computes the session state from the bootstrap flag, the token
// status and the cached profile. It never touches the network; an Expired
// status is Unauthenticated until someone refreshes.
func Derive(initializing bool, status TokenStatus, profile *models.User) State {
	if initializing {
		return Initializing{}
	}
	if status != Valid {
		return Unauthenticated{}
	}
	if profile == nil {
		return Authenticated{}
	}
	return Authenticated{Profile: *profile, ProfileLoaded: true}
}
