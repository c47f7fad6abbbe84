package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// ErrUnsignedNotes is returned when a keyring is configured but the release
// notes carry no clear-signed block.
var ErrUnsignedNotes = errors.New("release notes are not clear-signed")

// Verifier checks downloaded bytes against the checksum lines Carvel
// publishes in its release notes.
type Verifier struct {
	keyring openpgp.EntityList
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithKeyring requires the release notes to be clear-signed by a key in
// keyring. Checksum lines outside the signed text are then ignored.
func WithKeyring(keyring openpgp.EntityList) VerifierOption {
	return func(v *Verifier) { v.keyring = keyring }
}

// NewVerifier creates a new verifier
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ExpectedChecksumLine returns the line the release notes must contain for
// data published as assetName: lowercase hex sha256, two spaces, "./", name.
func ExpectedChecksumLine(data []byte, assetName string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + "  ./" + assetName
}

// Verify reports whether notes vouch for data. The match is an exact
// substring search; no other checksum format is accepted.
func (v *Verifier) Verify(data []byte, assetName, notes string) (VerificationMethod, error) {
	method := VerificationSHA256
	if v.keyring != nil {
		signed, err := v.signedText(notes)
		if err != nil {
			return VerificationNone, fmt.Errorf("verify release notes for %s: %w", assetName, err)
		}
		notes = signed
		method = VerificationSignedNotes
	}

	expected := ExpectedChecksumLine(data, assetName)
	if !strings.Contains(notes, expected) {
		return VerificationNone, &ChecksumError{Asset: assetName, Expected: expected}
	}

	return method, nil
}

// signedText checks the clear signature embedded in notes and returns the
// signed plaintext.
func (v *Verifier) signedText(notes string) (string, error) {
	block, _ := clearsign.Decode([]byte(notes))
	if block == nil {
		return "", ErrUnsignedNotes
	}

	if _, err := openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil); err != nil {
		return "", fmt.Errorf("check signature: %w", err)
	}

	return string(block.Plaintext), nil
}
