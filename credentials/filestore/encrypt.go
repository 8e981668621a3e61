package filestore

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Encrypted file layout: magic || salt || nonce || ciphertext.
var encryptedMagic = []byte("CTC1")

const saltLength = 16

// scrypt parameters sized for an interactive CLI login.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "scrypt.Key")
	}
	return key, nil
}

func encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "[encrypt] rand.Read salt")
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, errors.Wrap(err, "[encrypt] deriveKey")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "[encrypt] chacha20poly1305.NewX")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "[encrypt] rand.Read nonce")
	}

	out := make([]byte, 0, len(encryptedMagic)+saltLength+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, encryptedMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func decrypt(data []byte, passphrase string) ([]byte, error) {
	headerLen := len(encryptedMagic) + saltLength + chacha20poly1305.NonceSizeX
	if len(data) < headerLen {
		return nil, errors.New("[decrypt] file too short")
	}
	if string(data[:len(encryptedMagic)]) != string(encryptedMagic) {
		return nil, errors.New("[decrypt] bad magic")
	}

	salt := data[len(encryptedMagic) : len(encryptedMagic)+saltLength]
	nonce := data[len(encryptedMagic)+saltLength : headerLen]
	ciphertext := data[headerLen:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, errors.Wrap(err, "[decrypt] deriveKey")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "[decrypt] chacha20poly1305.NewX")
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[decrypt] aead.Open")
	}
	return plaintext, nil
}
