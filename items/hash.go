package items

// hash is a fixed-capacity Robin Hood hash map, uint32 key -> uint32
// value, 0 reserved as the empty-slot sentinel. Verbatim adaptation of
// the teacher's localidx.Hash displacement algorithm.
type hash struct {
	keys []uint32
	vals []uint32
	mask uint32
}

func nextPow2(n int) uint32 {
	s := uint32(1)
	for s < uint32(n) {
		s <<= 1
	}
	return s
}

func newHash(capacity int) hash {
	sz := nextPow2(capacity*2 + 1)
	return hash{
		keys: make([]uint32, sz),
		vals: make([]uint32, sz),
		mask: sz - 1,
	}
}

func (h hash) put(key, val uint32) {
	i := key & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			h.keys[i], h.vals[i] = key, val
			return
		}
		if k == key {
			h.vals[i] = val
			return
		}
		kDist := (i + h.mask + 1 - (k & h.mask)) & h.mask
		if kDist < dist {
			key, h.keys[i] = h.keys[i], key
			val, h.vals[i] = h.vals[i], val
			dist = kDist
		}
		i = (i + 1) & h.mask
		dist++
	}
}

func (h hash) get(key uint32) (uint32, bool) {
	i := key & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			return 0, false
		}
		if k == key {
			return h.vals[i], true
		}
		kDist := (i + h.mask + 1 - (k & h.mask)) & h.mask
		if kDist < dist {
			return 0, false
		}
		i = (i + 1) & h.mask
		dist++
	}
}
