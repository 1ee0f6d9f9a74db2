// Package state saves and restores parameter values as a binary blob.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/chipsynth/pkg/framework/param"
)

const magic = "CHIPSN"

// ErrInvalidFormat reports a blob that is not a saved state.
var ErrInvalidFormat = errors.New("invalid state format")

// Manager handles state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry

	saveCustom CustomSaveFunc
	loadCustom CustomLoadFunc
}

// CustomSaveFunc writes state beyond parameters
type CustomSaveFunc func(w io.Writer) error

// CustomLoadFunc reads what the matching CustomSaveFunc wrote
type CustomLoadFunc func(r io.Reader) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  1,
		registry: registry,
	}
}

// SetCustomState sets functions for saving and loading custom state.
func (m *Manager) SetCustomState(save CustomSaveFunc, load CustomLoadFunc) {
	m.saveCustom = save
	m.loadCustom = load
}

// Save writes the state to a writer. Parameters are stored as
// normalized values keyed by ID.
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}

	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	if m.saveCustom == nil {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}
	// Mark that custom data follows
	if err := binary.Write(w, binary.LittleEndian, uint32(1)); err != nil {
		return err
	}
	return m.saveCustom(w)
}

// Load reads state from a reader. Unknown parameter IDs are skipped.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if version > m.version {
		return fmt.Errorf("state version %d is newer than supported version %d", version, m.version)
	}

	var paramCount int32
	if err := binary.Read(r, binary.LittleEndian, &paramCount); err != nil {
		return fmt.Errorf("reading parameter count: %w", err)
	}
	if paramCount < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidFormat)
	}

	// Read everything before applying so a truncated blob changes nothing
	type entry struct {
		id    uint32
		value float64
	}
	entries := make([]entry, 0, min(int(paramCount), 1024))
	for i := int32(0); i < paramCount; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e.id); err != nil {
			return fmt.Errorf("reading parameter %d: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.value); err != nil {
			return fmt.Errorf("reading parameter %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		// Ignore unknown parameters for forward compatibility
		if p := m.registry.Get(e.id); p != nil {
			p.SetValue(e.value)
		}
	}

	var hasCustom uint32
	if err := binary.Read(r, binary.LittleEndian, &hasCustom); err != nil {
		return fmt.Errorf("reading custom marker: %w", err)
	}
	if hasCustom == 0 || m.loadCustom == nil {
		return nil
	}
	return m.loadCustom(r)
}
