package plugin

import (
	"crypto/sha1"
	"errors"
	"fmt"
)

// Info contains synth metadata
type Info struct {
	ID       string // Unique identifier (e.g., "com.example.chipsynth")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Category (e.g., "Instrument|Synth")
}

// DefaultInfo describes the chip synth.
var DefaultInfo = Info{
	ID:       "com.justyntemme.chipsynth",
	Name:     "Chip Synth",
	Version:  "0.1.0",
	Vendor:   "justyntemme",
	Category: "Instrument|Synth",
}

// uidNamespace seeds name-based UIDs so they don't collide with other
// name-based schemes hashing the same string.
var uidNamespace = [16]byte{
	0x6c, 0x8f, 0x2a, 0x41, 0x93, 0x0e, 0x4b, 0x57,
	0xa1, 0x3d, 0xc4, 0x70, 0x5e, 0x19, 0xb8, 0x22,
}

// UID derives a stable 16-byte identifier from the string ID, laid out
// as a version 5 UUID.
func (i Info) UID() [16]byte {
	h := sha1.New()
	h.Write(uidNamespace[:])
	h.Write([]byte(i.ID))
	sum := h.Sum(nil)

	var uid [16]byte
	copy(uid[:], sum)
	uid[6] = (uid[6] & 0x0f) | 0x50 // version 5
	uid[8] = (uid[8] & 0x3f) | 0x80 // RFC 4122 variant
	return uid
}

// UIDString formats the UID in canonical 8-4-4-4-12 form.
func (i Info) UIDString() string {
	u := i.UID()
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// ValidateUID checks that a UID can be derived.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID is empty")
	}
	return nil
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", i.Name, i.Version, i.Vendor, i.ID)
}
