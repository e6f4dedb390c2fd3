package sendmode

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/NordCoder/SendModes/internal/liberr"
	"golang.org/x/crypto/ssh"
)

const pemBlockType = "RSA PRIVATE KEY"

// EncodePrivateKeyPEM renders key as PKCS#1 PEM with LF line endings.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) (string, error) {
	if key == nil {
		return "", liberr.Internal("encode private key: nil key")
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	return string(pem.EncodeToMemory(&pem.Block{Type: pemBlockType, Bytes: der})), nil
}

func DecodePrivateKeyPEM(s string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, liberr.Internal("decode private key: no PEM block")
	}
	if block.Type != pemBlockType {
		return nil, liberr.Internal("decode private key: unexpected PEM type %q", block.Type)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, liberr.InternalCause("decode private key", err)
	}
	return key, nil
}

// KeyFingerprint identifies a key in logs without exposing it.
func KeyFingerprint(key *rsa.PrivateKey) string {
	if key == nil {
		return ""
	}
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}
