// Package identity mints generation-qualified identity tokens for objects.
//
// A Token pairs the raw address of a key object with a monotonically
// increasing generation counter. The raw address alone is not a safe
// equality key: the runtime recycles addresses, so a new object may be
// placed exactly where a collected one used to live. The generation
// counter makes every minted token unique for the lifetime of the
// process, which means tokens can be compared with == without any risk
// of address-reuse collisions.
//
// Usage:
//
//	tok, err := identity.Mint(obj)
//	if err != nil {
//		// obj cannot carry a stable identity
//	}
//	bucket := tok.Sum64() & mask
//
// The raw address is still useful: it is the hash input for bucketing
// tokens in a table. Token.Sum64 exposes exactly that and nothing more.
package identity
