// Package confloader provides configuration loading mechanism.
package confloader

import "errors"

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider, use Read() instead")

// mapProvider is a koanf provider backed by an in-memory map. The stress
// tool uses it to layer CLI flag overrides on top of file and env values,
// and tests use it to seed configuration without touching the filesystem.
//
// koanf.Provider implementations expose either ReadBytes() or Read();
// koanf calls whichever the provider supports. A map has no byte form,
// so only Read() is meaningful here.
type mapProvider map[string]any

// ReadBytes returns an error; map contents have no byte serialization.
// Use Read() instead.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map.
func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
