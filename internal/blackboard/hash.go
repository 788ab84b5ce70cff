package blackboard

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// fnv1a hashes the UTF-16 code units of s, which keeps key hashes identical
// to those produced by existing game-side tooling.
func fnv1a(s string) uint32 {
	hash := uint32(fnvOffset32)
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			hash = (hash ^ uint32(0xD800+(r>>10))) * fnvPrime32
			hash = (hash ^ uint32(0xDC00+(r&0x3FF))) * fnvPrime32
			continue
		}
		hash = (hash ^ uint32(r)) * fnvPrime32
	}
	return hash
}
