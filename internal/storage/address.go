package storage

import "github.com/ethereum/go-ethereum/common"

// AddressesToBytes converts addresses into the [][]byte pgx encodes as bytea[].
func AddressesToBytes(addrs []common.Address) [][]byte {
	out := make([][]byte, len(addrs))
	for i, a := range addrs {
		out[i] = a.Bytes()
	}
	return out
}

// BytesToAddresses is the inverse of AddressesToBytes.
func BytesToAddresses(raw [][]byte) []common.Address {
	out := make([]common.Address, len(raw))
	for i, b := range raw {
		out[i] = common.BytesToAddress(b)
	}
	return out
}
