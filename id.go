package pairtree

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// identifier schemes for generated ids
const (
	NumericIDs = "numeric"
	UUIDIDs    = "uuid"
)

var numericIDLimit = big.NewInt(100000000000000) // 10^14

// newID returns a fresh identifier in the store's scheme.  It does not
// check whether the id is in use.
func (store *Store) newID() (id string, err error) {
	switch store.IDScheme {
	case "", NumericIDs:
		n, err := rand.Int(rand.Reader, numericIDLimit)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%014d", n), nil
	case UUIDIDs:
		u, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unknown id scheme: %q", store.IDScheme)
}
