package certificate

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// IDPrefix marks certificate identifiers.
const IDPrefix = "CERT-"

// NewCertificateID derives an opaque identifier from the student, the course
// and the issuance instant. Different inputs give different identifiers; the
// same inputs always give the same one.
func NewCertificateID(studentID, courseID string, issuedAt time.Time) string {
	h, _ := blake2b.New256(nil)

	writeField(h, studentID)
	writeField(h, courseID)

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(issuedAt.UnixNano()))
	_, _ = h.Write(ts[:])

	sum := h.Sum(nil)
	return IDPrefix + strings.ToUpper(hex.EncodeToString(sum[:10]))
}

// writeField length-prefixes a value so ("ab","c") and ("a","bc") differ.
func writeField(h interface{ Write([]byte) (int, error) }, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	_, _ = h.Write(n[:])
	_, _ = h.Write([]byte(s))
}
