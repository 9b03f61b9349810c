package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// DomainInterface separates interface fingerprints from any other hash
// computed over canonical JSON. The version suffix allows migration.
const DomainInterface = "chanproto/interface/v1"

// protocolNamespace is the UUIDv5 namespace for protocol IDs.
var protocolNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/chanproto"))

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content hash of an interface declaration.
// Positions and the source file name do not contribute, so the fingerprint
// changes only when the generated protocol would.
func Fingerprint(spec *InterfaceSpec) (string, error) {
	canonical, err := MarshalCanonical(spec.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInterface, canonical), nil
}

// ProtocolID derives a stable UUIDv5 from the fingerprint. Two declarations
// share an ID exactly when they would generate the same protocol.
func ProtocolID(spec *InterfaceSpec) (uuid.UUID, error) {
	fp, err := Fingerprint(spec)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(protocolNamespace, []byte(fp)), nil
}
