// Package harmonic implements the passphrase-keyed primitives at the bottom of
// the wallet pipeline: harmonic key derivation, symmetric encryption keyed off
// the derived material, deterministic signatures, and the 12-word mnemonic
// codec. Every function is a pure function of its inputs.
package harmonic

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "harmonic")

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DeriveKey derives a 64-hex-char harmonic key from a passphrase. The
// passphrase is hashed with the seed constant, then folded twelve times: each
// round takes a resonance byte cyclically from the passphrase, weights it by
// the round's octave and phase shift, and re-hashes the accumulator together
// with the transformed value and the round index.
func DeriveKey(passphrase string) string {
	key := hashHex(passphrase + seedConstant)
	for i := 0; i < Rounds; i++ {
		resonance := 0.0
		if len(passphrase) > 0 {
			resonance = float64(passphrase[i%len(passphrase)])
		}
		transformed := uint64(resonance * octaveAt(i) * phaseAt(i))
		key = hashHex(key + strconv.FormatUint(transformed, 10) + strconv.Itoa(i))
	}
	return key
}

// cipherParams splits derived key material into an AES-128 key (first 32 hex
// chars) and a CBC IV (next 16 hex chars, zero-padded to the block size).
func cipherParams(material string) ([]byte, []byte, error) {
	if len(material) < 48 {
		return nil, nil, fmt.Errorf("key material too short: %d", len(material))
	}
	key, err := hex.DecodeString(material[:32])
	if err != nil {
		return nil, nil, fmt.Errorf("fail to decode key: %w", err)
	}
	ivPart, err := hex.DecodeString(material[32:48])
	if err != nil {
		return nil, nil, fmt.Errorf("fail to decode iv: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, ivPart)
	return key, iv, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padtext...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("corrupt padding")
		}
	}
	return data[:len(data)-padding], nil
}

// EncryptWithKey encrypts plaintext under already-derived key material.
func EncryptWithKey(plaintext, material string) (string, error) {
	key, iv, err := cipherParams(material)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("fail to create cipher: %w", err)
	}
	src := pkcs7Pad([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(src))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, src)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptWithKey reverses EncryptWithKey. It never returns an error: wrong key
// material or a corrupted ciphertext yields the empty string, with the cause
// logged, so hot verification paths stay exception-free.
func DecryptWithKey(ciphertext, material string) string {
	key, iv, err := cipherParams(material)
	if err != nil {
		logger.WithError(err).Warn("fail to derive cipher params")
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		logger.WithError(err).Warn("fail to decode ciphertext")
		return ""
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		logger.WithError(err).Warn("fail to create cipher")
		return ""
	}
	if len(raw) == 0 || len(raw)%block.BlockSize() != 0 {
		logger.Warnf("ciphertext length %d is not a multiple of the block size", len(raw))
		return ""
	}
	plaintext := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, raw)
	unpadded, err := pkcs7Unpad(plaintext, block.BlockSize())
	if err != nil {
		logger.WithError(err).Warn("fail to unpad plaintext")
		return ""
	}
	return string(unpadded)
}

// Encrypt encrypts plaintext under a passphrase-derived harmonic key.
func Encrypt(plaintext, passphrase string) (string, error) {
	return EncryptWithKey(plaintext, DeriveKey(passphrase))
}

// Decrypt reverses Encrypt; returns "" on wrong passphrase or corrupt input.
func Decrypt(ciphertext, passphrase string) string {
	return DecryptWithKey(ciphertext, DeriveKey(passphrase))
}

// Sign produces a deterministic signature by chaining the derived key material
// with the message digest over four hash rounds.
func Sign(message, keyMaterial string) string {
	chain := hashHex(keyMaterial + seedConstant)
	digest := hashHex(message)
	for i := 0; i < 4; i++ {
		chain = hashHex(chain + digest + strconv.Itoa(i))
	}
	return chain
}

// Verify recomputes the expected signature and compares it in constant time.
// Signatures of unexpected length fail immediately.
func Verify(message, signature, keyMaterial string) bool {
	expected := Sign(message, keyMaterial)
	if len(signature) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}
