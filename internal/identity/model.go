package identity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Principal is an address allowed to call the API. The secret proves
// control of the address to the login endpoint.
type Principal struct {
	ID           string
	Address      common.Address
	SecretHash   []byte
	TokenVersion int
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Address common.Address
	Secret  string
}
