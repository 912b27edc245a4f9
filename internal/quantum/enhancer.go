// Package quantum derives the quantum-enhanced key material layered over a
// base public/private key pair: the entanglement hash binding the two keys,
// the superposition states, the lattice salt, and the fingerprint, plus the
// sign/verify and symmetric operations built from that material.
//
// Signature verification accepts a match against any one of the three
// superposition states. That widens the valid signature space compared to a
// single-state scheme and needs a security review before production use.
package quantum

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/internal/harmonic"
)

var logger = logrus.WithField("module", "quantum")

// KeyPair is an opaque hex-encoded public/private key pair supplied by the
// base wallet provider.
type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// QuantumKeyPair extends a base key pair with the derived quantum material.
// All derived fields are pure functions of the key pair: recomputing them
// from the same keys yields byte-identical values.
type QuantumKeyPair struct {
	KeyPair
	QuantumFingerprint  string   `json:"quantum_fingerprint"`
	EntanglementHash    string   `json:"entanglement_hash"`
	SuperpositionStates []string `json:"superposition_states"`
	LatticeSalt         string   `json:"lattice_salt"`
}

// superpositionCount is the fixed size of the superposition state set.
const superpositionCount = 3

// stateConstants salt the three superposition states independently.
var stateConstants = [superpositionCount]float64{
	harmonic.GoldenRatio,
	harmonic.SilverRatio,
	harmonic.PlasticRatio,
}

// latticeRounds is the number of golden-ratio re-hash rounds behind the salt.
const latticeRounds = 7

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func hmacHex(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 12, 64)
}

// Enhance derives the full quantum key pair from a base key pair.
func Enhance(publicKey, privateKey string) QuantumKeyPair {
	entanglement := entangle(publicKey, privateKey)
	return QuantumKeyPair{
		KeyPair:             KeyPair{PublicKey: publicKey, PrivateKey: privateKey},
		QuantumFingerprint:  fingerprint(publicKey, privateKey, entanglement),
		EntanglementHash:    entanglement,
		SuperpositionStates: superpositionStates(privateKey),
		LatticeSalt:         latticeSalt(publicKey, privateKey),
	}
}

// entangle binds two values through twelve mixing rounds. Each round combines
// one byte drawn from each input digest under one of four rules (XOR, modular
// addition, golden-ratio multiplication, Fibonacci combination), hashes the
// result with the round index, and chains it into the accumulator.
func entangle(a, b string) string {
	aSum := sha256.Sum256([]byte(a))
	bSum := sha256.Sum256([]byte(b))
	acc := hashHex(a + b)
	for i := 0; i < harmonic.Rounds; i++ {
		x := uint64(aSum[i%len(aSum)])
		y := uint64(bSum[i%len(bSum)])
		var mixed uint64
		switch i % 4 {
		case 0:
			mixed = x ^ y
		case 1:
			mixed = (x + y) % 256
		case 2:
			mixed = uint64(float64(x*y) * harmonic.GoldenRatio)
		case 3:
			mixed = x*harmonic.FibWeight(i) + y*harmonic.FibWeight(i+1)
		}
		acc = hashHex(acc + strconv.FormatUint(mixed, 10) + strconv.Itoa(i))
	}
	return acc
}

func superpositionStates(privateKey string) []string {
	states := make([]string, superpositionCount)
	for i, c := range stateConstants {
		salt := hashHex("superposition-state" + strconv.Itoa(i) + formatRatio(c))
		states[i] = hashHex(privateKey + salt + strconv.Itoa(i))
	}
	return states
}

func latticeSalt(publicKey, privateKey string) string {
	salt := publicKey + privateKey
	for i := 0; i < latticeRounds; i++ {
		weight := harmonic.GoldenRatio * float64(i+1)
		salt = hashHex(salt + formatRatio(weight))
	}
	return salt
}

// fingerprint digests the public key together with an HMAC of the private key
// keyed by the entanglement hash, after passing the combined material through
// the interference transform.
func fingerprint(publicKey, privateKey, entanglement string) string {
	mac := hmacHex(entanglement, privateKey)
	return hashHex(interference(publicKey + mac))
}

// interference applies the byte-wise tunneling transform: each byte is
// re-weighted by the absolute sine of its position scaled by the golden ratio.
func interference(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		w := math.Abs(math.Sin(float64(i) * harmonic.GoldenRatio))
		t := uint64(float64(s[i]) * (1 + w) * harmonic.PlasticRatio)
		b.WriteString(strconv.FormatUint(t, 16))
	}
	return b.String()
}

// Sign entangles the message digest with the key pair's entanglement hash and
// seals it with an HMAC keyed by the first superposition state and the
// lattice salt. Only the first state signs; see Verify for the counterpart.
func Sign(message string, qkp QuantumKeyPair) string {
	entangled := entangle(hashHex(message), qkp.EntanglementHash)
	return hmacHex(qkp.SuperpositionStates[0]+qkp.LatticeSalt, entangled)
}

// Verify recomputes the entangled message hash and accepts the signature if
// it matches the candidate HMAC of any superposition state. Each candidate is
// compared in constant time.
func Verify(message, signature string, qkp QuantumKeyPair) bool {
	entangled := entangle(hashHex(message), qkp.EntanglementHash)
	valid := false
	for _, state := range qkp.SuperpositionStates {
		candidate := hmacHex(state+qkp.LatticeSalt, entangled)
		if len(candidate) == len(signature) &&
			subtle.ConstantTimeCompare([]byte(candidate), []byte(signature)) == 1 {
			valid = true
		}
	}
	return valid
}

// symmetricKey derives the key material for EncryptData/DecryptData from the
// full derived state of the key pair.
func symmetricKey(qkp QuantumKeyPair) string {
	return hashHex(qkp.EntanglementHash + strings.Join(qkp.SuperpositionStates, "") + qkp.LatticeSalt)
}

// EncryptData encrypts data under key material derived from the quantum pair.
func EncryptData(data string, qkp QuantumKeyPair) (string, error) {
	return harmonic.EncryptWithKey(data, symmetricKey(qkp))
}

// DecryptData reverses EncryptData. It returns the empty string on wrong key
// material or corrupted ciphertext; callers must check for emptiness.
func DecryptData(ciphertext string, qkp QuantumKeyPair) string {
	plaintext := harmonic.DecryptWithKey(ciphertext, symmetricKey(qkp))
	if plaintext == "" {
		logger.Warn("fail to decrypt data with quantum key material")
	}
	return plaintext
}

// DeriveSeed runs user entropy through the harmonic key derivation, then
// folds in every ratio constant over seven re-hash rounds.
func DeriveSeed(userEntropy string) string {
	seed := harmonic.DeriveKey(userEntropy)
	for i := 0; i < latticeRounds; i++ {
		for _, c := range stateConstants {
			seed = hashHex(seed + formatRatio(c) + strconv.Itoa(i))
		}
	}
	return seed
}

// VerifyKeyPair recomputes the entanglement hash and fingerprint from the
// stored keys and checks both against the stored values in constant time.
func VerifyKeyPair(qkp QuantumKeyPair) bool {
	entanglement := entangle(qkp.PublicKey, qkp.PrivateKey)
	fp := fingerprint(qkp.PublicKey, qkp.PrivateKey, entanglement)
	entOK := len(entanglement) == len(qkp.EntanglementHash) &&
		subtle.ConstantTimeCompare([]byte(entanglement), []byte(qkp.EntanglementHash)) == 1
	fpOK := len(fp) == len(qkp.QuantumFingerprint) &&
		subtle.ConstantTimeCompare([]byte(fp), []byte(qkp.QuantumFingerprint)) == 1
	return entOK && fpOK
}
