package frame

import "math/bits"

// Scrambler is the optional post-compression stream transform whose mode
// and seeds InitZone carries to the client. It is a direct generalization
// of the teacher's XOR rolling cipher (internal/net/cipher.go): the same
// four-mask, eight-byte rolling key-schedule, just reseeded from three
// 32-bit seeds instead of one.
type Scrambler struct {
	eb [8]byte
	db [8]byte
	tb [4]byte
}

const (
	scramblerMask1 = 0x9c30d539
	scramblerMask2 = 0x930fd7e2
	scramblerMask3 = 0x7c72e993
	scramblerMask4 = 0x287effc3
)

// NewScrambler derives the key schedule from three 32-bit seeds.
// mode 0 means "no scrambler"; callers should pass a nil *Scrambler in
// that case rather than constructing one.
func NewScrambler(seed1, seed2, seed3 uint32) *Scrambler {
	s := &Scrambler{}
	key := seed1 ^ seed2<<1 ^ seed3<<2

	keys := [2]uint32{
		key ^ scramblerMask1,
		scramblerMask2,
	}
	keys[0] = bits.RotateLeft32(keys[0], 0x13)
	keys[1] ^= keys[0] ^ scramblerMask3

	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			b := byte((keys[i] >> (j * 8)) & 0xff)
			s.eb[i*4+j] = b
			s.db[i*4+j] = b
		}
	}
	return s
}

// Encrypt scrambles data in place and returns it.
func (s *Scrambler) Encrypt(data []byte) []byte {
	if len(data) < 4 {
		return data
	}
	copy(s.tb[:], data[:4])

	data[0] ^= s.eb[0]
	for i := 1; i < len(data); i++ {
		data[i] ^= data[i-1] ^ s.eb[i&7]
	}

	data[3] ^= s.eb[2]
	data[2] ^= s.eb[3] ^ data[3]
	data[1] ^= s.eb[4] ^ data[2]
	data[0] ^= s.eb[5] ^ data[1]

	s.update(s.eb[:], s.tb[:])
	return data
}

// Decrypt reverses Encrypt in place and returns data.
func (s *Scrambler) Decrypt(data []byte) []byte {
	if len(data) < 4 {
		return data
	}
	data[0] ^= s.db[5] ^ data[1]
	data[1] ^= s.db[4] ^ data[2]
	data[2] ^= s.db[3] ^ data[3]
	data[3] ^= s.db[2]

	for i := len(data) - 1; i >= 1; i-- {
		data[i] ^= data[i-1] ^ s.db[i&7]
	}
	data[0] ^= s.db[0]

	s.update(s.db[:], data)
	return data
}

func (s *Scrambler) update(keyBytes []byte, ref []byte) {
	for i := 0; i < 4; i++ {
		keyBytes[i] ^= ref[i]
	}
	val := uint32(keyBytes[4]) |
		uint32(keyBytes[5])<<8 |
		uint32(keyBytes[6])<<16 |
		uint32(keyBytes[7])<<24
	val += scramblerMask4
	keyBytes[4] = byte(val)
	keyBytes[5] = byte(val >> 8)
	keyBytes[6] = byte(val >> 16)
	keyBytes[7] = byte(val >> 24)
}
