// Package crypto supplies the hashing and signature-verification
// primitives the relay needs to establish event identity and authenticity.
// It deliberately stays thin: the wire format and validation order live in
// pkg/validator, not here.
package crypto

import "github.com/minio/sha256-simd"

// Sum256 returns the SHA-256 digest of b, backed by a hardware-accelerated
// implementation where the platform supports it.
func Sum256(b []byte) [32]byte {
	return sha256.Sum256(b)
}
