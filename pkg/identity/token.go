// Package identity mints generation-qualified identity tokens for objects.
package identity

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/spaolacci/murmur3"
)

// generation is the process-wide token counter. It only ever grows, so no
// two minted tokens compare equal, even across address reuse.
var generation atomic.Uint64

// Token is a generation-qualified identity handle for a key object.
//
// Tokens are comparable. Two tokens are equal iff they came from the same
// Mint call, which in turn means they designate the same object instance.
// A token minted for a new object at a recycled address never compares
// equal to its predecessor's token.
//
// The zero Token is not a valid token; see IsZero.
type Token struct {
	raw uintptr
	gen uint64
}

// Mint derives a fresh token for obj.
//
// Returns ErrInvalidKey if obj is nil: a nil pointer designates no object
// and therefore carries no identity.
func Mint[T any](obj *T) (Token, error) {
	if obj == nil {
		return Token{}, ErrInvalidKey
	}
	return Token{
		raw: RawOf(obj),
		gen: generation.Add(1),
	}, nil
}

// RawOf returns the raw identity value of obj (its address), or 0 for nil.
//
// Raw values are recycled once the object is collected. They are suitable
// as hash input for bucketing and nothing else; never compare raw values
// to decide whether two keys are the same object.
func RawOf[T any](obj *T) uintptr {
	return uintptr(unsafe.Pointer(obj))
}

// HashRaw returns a 64-bit murmur3 hash of a raw identity value.
func HashRaw(raw uintptr) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(raw))
	return murmur3.Sum64(b[:])
}

// Raw returns the token's raw identity value. See RawOf for the caveats.
func (t Token) Raw() uintptr { return t.raw }

// Generation returns the uniqueness counter component of the token.
func (t Token) Generation() uint64 { return t.gen }

// IsZero reports whether t was never minted.
func (t Token) IsZero() bool { return t.gen == 0 }

// Sum64 returns the bucketing hash of the token's raw identity value.
//
// Tokens for objects at the same recycled address hash to the same bucket;
// exact membership must still be decided by comparing whole tokens.
func (t Token) Sum64() uint64 {
	return HashRaw(t.raw)
}

// String formats the token for logs, e.g. "idk-0xc000010000/42".
func (t Token) String() string {
	return fmt.Sprintf("idk-0x%x/%d", t.raw, t.gen)
}
