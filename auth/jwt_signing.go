package auth

import (
	"crypto"

	labelcrypto "github.com/bluesky-social/labeld/crypto"

	"github.com/golang-jwt/jwt/v5"
)

var (
	signingMethodES256K *signingMethodAtproto
	supportedAlgs       []string
)

// Implementation of jwt.SigningMethod for the K-256 key types.
type signingMethodAtproto struct {
	alg    string
	hash   crypto.Hash
	sigLen int
}

func init() {
	// tells JWT library to serialize 'aud' as regular string, not array of strings (when signing)
	jwt.MarshalSingleStringAsArray = false

	signingMethodES256K = &signingMethodAtproto{
		alg:    "ES256K",
		hash:   crypto.SHA256,
		sigLen: 64,
	}
	jwt.RegisterSigningMethod(signingMethodES256K.Alg(), func() jwt.SigningMethod {
		return signingMethodES256K
	})
	supportedAlgs = []string{signingMethodES256K.Alg()}
}

func (sm *signingMethodAtproto) Verify(signingString string, sig []byte, key interface{}) error {
	pub, ok := key.(labelcrypto.PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}

	if !sm.hash.Available() {
		return jwt.ErrHashUnavailable
	}

	if len(sig) != sm.sigLen {
		return jwt.ErrTokenSignatureInvalid
	}

	// NOTE: important to use the "lenient" variant here
	return pub.HashAndVerifyLenient([]byte(signingString), sig)
}

func (sm *signingMethodAtproto) Sign(signingString string, key interface{}) ([]byte, error) {
	priv, ok := key.(labelcrypto.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	return priv.HashAndSign([]byte(signingString))
}

func (sm *signingMethodAtproto) Alg() string {
	return sm.alg
}
