package label

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
)

// version of the label data format implemented by this package
const ATProtoLabelVersion int64 = 1

// Signer is the capability the label system uses to produce signatures. It
// is implemented by the crypto package key types, but the core never
// depends on a specific algorithm.
type Signer interface {
	HashAndSign(content []byte) ([]byte, error)
}

// Verifier checks a signature over content bytes; returns nil when valid.
type Verifier interface {
	HashAndVerify(content, sig []byte) error
}

// Label is a signed assertion about a subject (account or record),
// optionally negating an earlier assertion for the same subject.
type Label struct {
	CID       *string `json:"cid,omitempty" cborgen:"cid,omitempty"`
	CreatedAt string  `json:"cts" cborgen:"cts"`
	ExpiresAt *string `json:"exp,omitempty" cborgen:"exp,omitempty"`
	Negated   *bool   `json:"neg,omitempty" cborgen:"neg,omitempty"`
	SourceDID string  `json:"src" cborgen:"src"`
	URI       string  `json:"uri" cborgen:"uri"`
	Val       string  `json:"val" cborgen:"val"`
	Version   int64   `json:"ver" cborgen:"ver"`
	Sig       []byte  `json:"sig,omitempty" cborgen:"sig,omitempty"`
}

// does basic checks on syntax and structure
func (l *Label) VerifySyntax() error {
	if l.Version != ATProtoLabelVersion {
		return fmt.Errorf("unsupported label version: %d", l.Version)
	}
	if len(l.Val) == 0 {
		return fmt.Errorf("empty label value")
	}
	if l.CID != nil {
		if _, err := cid.Decode(*l.CID); err != nil {
			return fmt.Errorf("invalid label CID: %w", err)
		}
	}
	if _, err := time.Parse(time.RFC3339, l.CreatedAt); err != nil {
		return fmt.Errorf("invalid label timestamp: %w", err)
	}
	if l.ExpiresAt != nil {
		if _, err := time.Parse(time.RFC3339, *l.ExpiresAt); err != nil {
			return fmt.Errorf("invalid label expiry: %w", err)
		}
	}
	if !strings.HasPrefix(l.SourceDID, "did:") {
		return fmt.Errorf("invalid label source: %s", l.SourceDID)
	}
	if len(l.URI) == 0 {
		return fmt.Errorf("empty label subject URI")
	}
	return nil
}

// UnsignedBytes returns the canonical DAG-CBOR encoding of the label with
// the signature field excluded. These are the bytes signatures are computed
// and verified over.
func (l *Label) UnsignedBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if l.Sig == nil {
		if err := l.MarshalCBOR(buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	unsigned := Label{
		CID:       l.CID,
		CreatedAt: l.CreatedAt,
		ExpiresAt: l.ExpiresAt,
		Negated:   l.Negated,
		SourceDID: l.SourceDID,
		URI:       l.URI,
		Val:       l.Val,
		Version:   l.Version,
	}
	if err := unsigned.MarshalCBOR(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Signs the label, storing the signature in the `Sig` field
func (l *Label) Sign(signer Signer) error {
	b, err := l.UnsignedBytes()
	if err != nil {
		return err
	}
	sig, err := signer.HashAndSign(b)
	if err != nil {
		return err
	}
	l.Sig = sig
	return nil
}

// Verifies `Sig` field using the provided key. Returns `nil` if signature is valid.
func (l *Label) VerifySignature(verifier Verifier) error {
	if l.Sig == nil {
		return fmt.Errorf("can not verify unsigned label")
	}
	b, err := l.UnsignedBytes()
	if err != nil {
		return err
	}
	return verifier.HashAndVerify(b, l.Sig)
}
