// Package rfbauth implements VNC-DES challenge/response authentication
// and the on-disk pairing configuration that names which key hashes are
// accepted.
package rfbauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
)

// Pairing is the JSON-encoded pairing configuration written next to the
// executable (config.json). It is created empty on first run if absent.
type Pairing struct {
	PairedServerHashes []string `json:"paired_servers"`
}

// LoadPairing reads the pairing config at path, creating an empty one if
// the file does not exist.
func LoadPairing(path string) (*Pairing, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		empty := &Pairing{PairedServerHashes: []string{}}
		if writeErr := empty.Save(path); writeErr != nil {
			return nil, writeErr
		}
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	var p Pairing
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes p to path as indented JSON.
func (p *Pairing) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// HashKey returns the hex-encoded SHA-256 digest of raw, the form
// PairedServerHashes stores and compares against. Accepts uses it to
// check the statusapi pairkey header; the VNC-DES key is derived
// separately (see desBlockKey).
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Accepts reports whether raw's hash is among p's paired server hashes.
func (p *Pairing) Accepts(raw string) bool {
	want := HashKey(raw)
	for _, h := range p.PairedServerHashes {
		if h == want {
			return true
		}
	}
	return false
}
