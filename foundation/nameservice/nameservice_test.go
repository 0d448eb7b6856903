package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	t.Log("Given the need to name miners by their address.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a folder holds a key file for miner1.", testID)
		{
			root := t.TempDir()

			privateKey, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a key: %s", failed, testID, err)
			}

			if err := crypto.SaveECDSA(filepath.Join(root, "miner1.ecdsa"), privateKey); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save the key: %s", failed, testID, err)
			}

			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the folder: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the folder.", success, testID)

			address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
			if name := ns.Lookup(address); name != "miner1" {
				t.Fatalf("\t%s\tTest %d:\tShould resolve the address to miner1, got %q.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve the address to the miner name.", success, testID)

			if name := ns.Lookup("unknown"); name != "unknown" {
				t.Fatalf("\t%s\tTest %d:\tShould return unknown addresses as is, got %q.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould return unknown addresses as is.", success, testID)

			if got, exists := ns.Address("miner1"); !exists || got != address {
				t.Fatalf("\t%s\tTest %d:\tShould resolve miner1 to its address, got %q.", failed, testID, got)
			}
			if got, exists := ns.Address(address); !exists || got != address {
				t.Fatalf("\t%s\tTest %d:\tShould accept the address itself, got %q.", failed, testID, got)
			}
			if _, exists := ns.Address("miner2"); exists {
				t.Fatalf("\t%s\tTest %d:\tShould not resolve an unknown name.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve names back to addresses.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the folder doesn't exist.", testID)
		{
			ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould get back an empty name service: %s", failed, testID, err)
			}
			if len(ns.Copy()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get back an empty name service.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an empty name service.", success, testID)
		}
	}
}
