// Package nameservice reads a folder of miner key files and creates a name
// service lookup for miner addresses.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maps miner addresses to names and names back to addresses.
type NameService struct {
	addresses map[string]string
	names     map[string]string
}

// New constructs a name service with the miners found in the root folder.
// Each miner is a <name>.ecdsa private key file. A missing folder produces
// an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]string),
		names:     make(map[string]string),
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		if other, exists := ns.names[name]; exists && other != address {
			return fmt.Errorf("miner name %q used by %s and %s", name, other, address)
		}

		ns.addresses[address] = name
		ns.names[name] = address

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address. Unknown addresses
// are returned as is.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.addresses[address]
	if !exists {
		return address
	}
	return name
}

// Address returns the address of the named miner. Addresses are accepted
// and returned unchanged, so callers can pass either form.
func (ns *NameService) Address(nameOrAddress string) (string, bool) {
	if _, exists := ns.addresses[nameOrAddress]; exists {
		return nameOrAddress, true
	}

	address, exists := ns.names[nameOrAddress]
	return address, exists
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
