package arena

import "hash/fnv"

// Profile is a structural fingerprint of a node about to be interned:
// an ordered sequence of raw bytes and Handle references that together
// determine the node's identity. Two profiles that are byte-for-byte
// and ref-for-ref equal denote the same structural content; InternTable
// guarantees they map to the same Handle.
//
// Modeled on the stack-trace deduplication used by stackdepot.CaptureStack
// (hash the content, look it up, fall back to allocating and registering
// a new entry) but, since a silent type-identity collision would be a
// correctness bug rather than a cosmetic one, InternTable always backs
// the hash check with a full structural comparison instead of trusting
// the hash alone.
type Profile struct {
	tag   uint32
	bytes []byte
	refs  []Handle
}

// NewProfile starts a profile for a node kind. tag should be a small
// per-kind discriminant (e.g. an ExprKind or a type-constructor id) so
// that profiles for different node families never alias just because
// their trailing bytes happen to match.
func NewProfile(tag uint32) *Profile {
	return &Profile{tag: tag}
}

// Byte appends a single raw byte to the profile.
func (p *Profile) Byte(b byte) *Profile {
	p.bytes = append(p.bytes, b)
	return p
}

// Uint64 appends the little-endian bytes of v to the profile.
func (p *Profile) Uint64(v uint64) *Profile {
	for i := 0; i < 8; i++ {
		p.bytes = append(p.bytes, byte(v>>(8*i)))
	}
	return p
}

// Bytes appends a raw byte slice (e.g. a character constant's content)
// to the profile, length-prefixed so adjacent byte runs can't alias.
func (p *Profile) Bytes(b []byte) *Profile {
	p.Uint64(uint64(len(b)))
	p.bytes = append(p.bytes, b...)
	return p
}

// Ref appends a Handle reference. Two profiles with refs to different
// handles are never equal, even if every other field matches.
func (p *Profile) Ref(h Handle) *Profile {
	p.refs = append(p.refs, h)
	return p
}

// OptRef appends an optional reference: present selects whether h or the
// invalid-handle sentinel participates in the profile, so "no selector"
// and "selector referencing handle 0" (which cannot occur, since 0 is
// reserved) are always distinguishable from "some selector".
func (p *Profile) OptRef(h Handle, present bool) *Profile {
	if !present {
		return p.Ref(invalid)
	}
	return p.Ref(h)
}

func (p *Profile) hash() uint64 {
	h := fnv.New64a()
	var tagBuf [4]byte
	tagBuf[0] = byte(p.tag)
	tagBuf[1] = byte(p.tag >> 8)
	tagBuf[2] = byte(p.tag >> 16)
	tagBuf[3] = byte(p.tag >> 24)
	_, _ = h.Write(tagBuf[:])
	_, _ = h.Write(p.bytes)
	for _, r := range p.refs {
		var rb [4]byte
		rb[0] = byte(r)
		rb[1] = byte(r >> 8)
		rb[2] = byte(r >> 16)
		rb[3] = byte(r >> 24)
		_, _ = h.Write(rb[:])
	}
	return h.Sum64()
}

func (p *Profile) equal(o *Profile) bool {
	if p.tag != o.tag || len(p.bytes) != len(o.bytes) || len(p.refs) != len(o.refs) {
		return false
	}
	for i := range p.bytes {
		if p.bytes[i] != o.bytes[i] {
			return false
		}
	}
	for i := range p.refs {
		if p.refs[i] != o.refs[i] {
			return false
		}
	}
	return true
}
