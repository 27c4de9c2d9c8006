package store

import (
	"encoding/binary"
	"math"
)

// packEmbedding serializes a float32 vector as a packed little-endian byte
// slice, the on-disk representation spec §3 specifies for Item.embedding.
// A nil or empty vector packs to nil (stored as SQL NULL).
func packEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// unpackEmbedding reverses packEmbedding. A nil or misaligned blob (not a
// multiple of 4 bytes) decodes to nil rather than panicking.
func unpackEmbedding(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
