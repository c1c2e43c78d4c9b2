// Package keymaterial manages the Ed25519 identity key a client signs every
// outbound request with, and its JWK publication form.
//
// Grounded on the teacher's crypto/keys/ed25519.go (key generation, ID
// derivation) and crypto/formats/jwk.go (OKP/Ed25519 JWK shape), narrowed
// to the single algorithm RFC 9421 signing requires here.
package keymaterial

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/openpayments-go/client/pkg/operrors"
)

// JWK is the JSON Web Key representation of an Ed25519 public key, per
// RFC 7517 restricted to the OKP/Ed25519 fields this client needs.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
}

// KeyMaterial holds an Ed25519 key pair and the stable key_id that binds
// signatures this client produces to its published JWK. The private key is
// never exposed outside Sign.
type KeyMaterial struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	keyID      string
	destroyed  bool
}

// Generate creates a fresh KeyMaterial from the system CSPRNG. The key_id is
// derived from the public key hash, matching the teacher's ID scheme.
func Generate() (*KeyMaterial, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrKeyGeneration, err)
	}
	return &KeyMaterial{
		privateKey: priv,
		publicKey:  pub,
		keyID:      deriveKeyID(pub),
	}, nil
}

// FromSeed deterministically derives a KeyMaterial from a 32-byte seed,
// binding it to the caller-supplied key_id. seed must be exactly 32 bytes.
func FromSeed(seed []byte, keyID string) (*KeyMaterial, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, operrors.ErrInvalidSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	if keyID == "" {
		keyID = deriveKeyID(pub)
	}
	return &KeyMaterial{
		privateKey: priv,
		publicKey:  pub,
		keyID:      keyID,
	}, nil
}

func deriveKeyID(pub ed25519.PublicKey) string {
	hash := sha256.Sum256(pub)
	return hex.EncodeToString(hash[:8])
}

// KeyID returns the stable identifier bound to this key's published JWK.
func (k *KeyMaterial) KeyID() string { return k.keyID }

// PublicKey returns the raw 32-byte Ed25519 public key.
func (k *KeyMaterial) PublicKey() ed25519.PublicKey {
	pk := make(ed25519.PublicKey, len(k.publicKey))
	copy(pk, k.publicKey)
	return pk
}

// Sign produces the fixed 64-byte R||S Ed25519 signature over message.
func (k *KeyMaterial) Sign(message []byte) ([]byte, error) {
	if k.destroyed {
		return nil, operrors.Wrap(operrors.ErrSignatureGeneration, errDestroyed)
	}
	return ed25519.Sign(k.privateKey, message), nil
}

// PublicJWK renders the public half of this key as the JWK shape spec.md §6
// requires: kty=OKP, crv=Ed25519, x = unpadded base64url of the 32-byte
// public key, kid = key_id, alg=EdDSA, use=sig.
func (k *KeyMaterial) PublicJWK() JWK {
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(k.publicKey),
		Kid: k.keyID,
		Alg: "EdDSA",
		Use: "sig",
	}
}

// PublicJWKJSON renders PublicJWK as its wire-format JSON bytes.
func (k *KeyMaterial) PublicJWKJSON() ([]byte, error) {
	return json.Marshal(k.PublicJWK())
}

// ParseJWKPublicKey parses a JWK and returns the raw Ed25519 public key,
// validating the OKP/Ed25519 shape. Used by verifiers holding only a
// counterparty's published JWK.
func ParseJWKPublicKey(jwk JWK) (ed25519.PublicKey, error) {
	if jwk.Kty != "OKP" || jwk.Crv != "Ed25519" {
		return nil, operrors.WithDetails(operrors.ErrJWKField, map[string]any{"kty": jwk.Kty, "crv": jwk.Crv})
	}
	if jwk.X == "" {
		return nil, operrors.WithDetails(operrors.ErrJWKField, map[string]any{"field": "x"})
	}
	raw, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrBase64Decode, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, operrors.WithDetails(operrors.ErrJWKField, map[string]any{"field": "x", "length": len(raw)})
	}
	return ed25519.PublicKey(raw), nil
}

// Destroy zeroes the private key bytes. Go has no deterministic destructors,
// so callers must invoke this explicitly once the key material is no longer
// needed; subsequent Sign calls fail.
func (k *KeyMaterial) Destroy() {
	for i := range k.privateKey {
		k.privateKey[i] = 0
	}
	k.destroyed = true
}

var errDestroyed = destroyedError{}

type destroyedError struct{}

func (destroyedError) Error() string { return "key material has been destroyed" }
