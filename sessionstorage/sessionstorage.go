package sessionstorage

import (
	"time"

	"github.com/rxstock/session/sessiontypes"
)

// Record is the persisted session state. The identity and its token pair
// are written and cleared together; a crash can never leave one without the
// other.
type Record struct {
	Identity sessiontypes.Identity  `json:"identity"`
	Tokens   sessiontypes.TokenPair `json:"tokens"`
	SavedAt  time.Time              `json:"savedAt"`
}

// clone returns a copy so callers never alias driver-held state.
func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	record := *r

	return &record
}
