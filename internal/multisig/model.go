package multisig

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// MaxSigners bounds the signer list of a single group.
const MaxSigners = 256

// Group is one approval group. Signers may repeat: every occurrence of
// an identity in the list is one unit toward the quorum.
type Group struct {
	ID            uint64           `json:"id"`
	Quorum        uint64           `json:"quorum"`
	Signers       []common.Address `json:"signers"`
	Approvers     []common.Address `json:"approvers"`
	ApprovalCount uint64           `json:"approval_count"`
	Completed     bool             `json:"completed"`
}

// Occurrences counts how many positions of the signer list hold addr.
func (g Group) Occurrences(addr common.Address) uint64 {
	var n uint64
	for _, s := range g.Signers {
		if s == addr {
			n++
		}
	}
	return n
}

// HasSigned reports whether addr already signed this group.
func (g Group) HasSigned(addr common.Address) bool {
	return slices.Contains(g.Approvers, addr)
}

// Clone returns a deep copy so callers never alias stored slices.
func (g Group) Clone() Group {
	g.Signers = slices.Clone(g.Signers)
	g.Approvers = slices.Clone(g.Approvers)
	return g
}
