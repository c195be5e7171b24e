package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// defaultHashChunkSize is the read size used while hashing. The value only
// bounds memory; it does not affect the resulting digest.
const defaultHashChunkSize = 64 * 1024

// HashReader computes the SHA-256 digest of everything remaining in r,
// reading in fixed-size chunks so arbitrarily large inputs stay bounded in
// memory. Returns the lowercase hex digest.
func HashReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, defaultHashChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			// Hash writes never fail.
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read content while hashing: %w", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashBytes returns the lowercase hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
