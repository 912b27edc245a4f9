// Package wallet composes the base wallet provider with the quantum
// enhancement layer into a single wallet record and carries the wallet-level
// operations: creation, mnemonic recovery, encrypted storage round trips,
// dual-signature transactions, derived addresses and identity hashes.
package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/internal/harmonic"
	"github.com/quantumshield/quantumwallet/internal/quantum"
)

// DefaultAddressCount is the number of derived addresses returned when the
// caller does not ask for a specific count.
const DefaultAddressCount = 12

// QuantumWallet bundles a base wallet with its quantum enhancement.
//
// QuantumSeed is unique per Create call (a time nonce enters the derivation)
// and is intentionally not reproducible by Recover, which re-derives the seed
// from the passphrase and the recovered private key instead. Only the key
// pair, EntropySignature and EntanglementProof are stable across recovery.
type QuantumWallet struct {
	BaseWallet        *BaseWallet            `json:"base_wallet"`
	QuantumKeyPair    quantum.QuantumKeyPair `json:"quantum_key_pair"`
	QuantumSeed       string                 `json:"quantum_seed"`
	EntropySignature  string                 `json:"entropy_signature"`
	EntanglementProof string                 `json:"entanglement_proof"`
}

// EncryptedWalletRecord is the serialized storage form of a wallet: the base
// wallet sealed by the provider, and the quantum components sealed under key
// material derived from the key pair. The raw private key never enters the
// quantum blob.
type EncryptedWalletRecord struct {
	BaseWallet        string `json:"base_wallet"`
	QuantumComponents string `json:"quantum_components"`
}

// quantumComponents is the JSON projection of a wallet's quantum material
// that goes into storage. It deliberately omits the private key. The seed is
// included so an unlocked wallet keeps the exact derived addresses of the
// original; it only ever travels inside the sealed quantum blob.
type quantumComponents struct {
	PublicKey           string   `json:"public_key"`
	QuantumFingerprint  string   `json:"quantum_fingerprint"`
	EntanglementHash    string   `json:"entanglement_hash"`
	SuperpositionStates []string `json:"superposition_states"`
	LatticeSalt         string   `json:"lattice_salt"`
	QuantumSeed         string   `json:"quantum_seed"`
	EntropySignature    string   `json:"entropy_signature"`
	EntanglementProof   string   `json:"entanglement_proof"`
}

// Manager orchestrates the base wallet provider and the quantum layer.
type Manager struct {
	provider Provider
	logger   *logrus.Entry
}

func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		logger:   logrus.WithField("module", "wallet"),
	}
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) compose(base *BaseWallet, seed string) *QuantumWallet {
	qkp := quantum.Enhance(base.PublicKey, base.PrivateKey)
	entropySig := quantum.Sign(seed, qkp)
	return &QuantumWallet{
		BaseWallet:        base,
		QuantumKeyPair:    qkp,
		QuantumSeed:       seed,
		EntropySignature:  entropySig,
		EntanglementProof: hashHex(qkp.EntanglementHash + entropySig),
	}
}

// Create builds a fresh wallet. The quantum seed mixes in a nanosecond nonce,
// so two calls with identical inputs produce distinct wallets.
func (m *Manager) Create(ctx context.Context, passphrase, additionalEntropy string) (*QuantumWallet, error) {
	nonce := strconv.FormatInt(time.Now().UnixNano(), 10)
	seed := quantum.DeriveSeed(passphrase + additionalEntropy + nonce)
	base, err := m.provider.CreateWallet(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("fail to create base wallet: %w", err)
	}
	w := m.compose(base, seed)
	m.logger.WithField("address", base.Address).Info("created wallet")
	return w, nil
}

// Recover rebuilds a wallet from its mnemonic. The seed derivation here is
// deterministic: no nonce, keyed by passphrase and recovered private key.
func (m *Manager) Recover(ctx context.Context, mnemonic, passphrase string) (*QuantumWallet, error) {
	base, err := m.provider.RecoverFromMnemonic(ctx, mnemonic, passphrase)
	if err != nil {
		var invalid *harmonic.InvalidMnemonicError
		if errors.As(err, &invalid) {
			return nil, invalid
		}
		return nil, &WalletRecoveryError{Err: err}
	}
	seed := quantum.DeriveSeed(passphrase + base.PrivateKey)
	w := m.compose(base, seed)
	m.logger.WithField("address", base.Address).Info("recovered wallet")
	return w, nil
}

// EncryptForStorage serializes a wallet into its encrypted storage record.
func (m *Manager) EncryptForStorage(w *QuantumWallet, passphrase string) (string, error) {
	baseBlob, err := m.provider.EncryptForStorage(w.BaseWallet, passphrase)
	if err != nil {
		return "", fmt.Errorf("fail to encrypt base wallet: %w", err)
	}
	projection := quantumComponents{
		PublicKey:           w.QuantumKeyPair.PublicKey,
		QuantumFingerprint:  w.QuantumKeyPair.QuantumFingerprint,
		EntanglementHash:    w.QuantumKeyPair.EntanglementHash,
		SuperpositionStates: w.QuantumKeyPair.SuperpositionStates,
		LatticeSalt:         w.QuantumKeyPair.LatticeSalt,
		QuantumSeed:         w.QuantumSeed,
		EntropySignature:    w.EntropySignature,
		EntanglementProof:   w.EntanglementProof,
	}
	data, err := json.Marshal(projection)
	if err != nil {
		return "", fmt.Errorf("fail to serialize quantum components: %w", err)
	}
	quantumBlob, err := quantum.EncryptData(string(data), w.QuantumKeyPair)
	if err != nil {
		return "", fmt.Errorf("fail to encrypt quantum components: %w", err)
	}
	record, err := json.Marshal(EncryptedWalletRecord{
		BaseWallet:        baseBlob,
		QuantumComponents: quantumBlob,
	})
	if err != nil {
		return "", fmt.Errorf("fail to serialize record: %w", err)
	}
	return string(record), nil
}

// DecryptFromStorage reverses EncryptForStorage. The key pair is re-derived
// from the recovered base wallet to obtain decryption material, the private
// key is re-attached to the decrypted public fields, and the reconstituted
// pair must pass integrity verification.
func (m *Manager) DecryptFromStorage(serialized, passphrase string) (*QuantumWallet, error) {
	var record EncryptedWalletRecord
	if err := json.Unmarshal([]byte(serialized), &record); err != nil {
		return nil, &WalletDecryptionError{Err: fmt.Errorf("fail to parse record: %w", err)}
	}
	base, err := m.provider.DecryptFromStorage(record.BaseWallet, passphrase)
	if err != nil {
		return nil, &WalletDecryptionError{Err: err}
	}
	temp := quantum.Enhance(base.PublicKey, base.PrivateKey)
	plaintext := quantum.DecryptData(record.QuantumComponents, temp)
	if plaintext == "" {
		return nil, &WalletDecryptionError{Err: fmt.Errorf("fail to decrypt quantum components")}
	}
	var components quantumComponents
	if err := json.Unmarshal([]byte(plaintext), &components); err != nil {
		return nil, &WalletDecryptionError{Err: fmt.Errorf("fail to parse quantum components: %w", err)}
	}
	qkp := quantum.QuantumKeyPair{
		KeyPair: quantum.KeyPair{
			PublicKey:  components.PublicKey,
			PrivateKey: base.PrivateKey,
		},
		QuantumFingerprint:  components.QuantumFingerprint,
		EntanglementHash:    components.EntanglementHash,
		SuperpositionStates: components.SuperpositionStates,
		LatticeSalt:         components.LatticeSalt,
	}
	if !quantum.VerifyKeyPair(qkp) {
		return nil, &QuantumIntegrityError{}
	}
	return &QuantumWallet{
		BaseWallet:        base,
		QuantumKeyPair:    qkp,
		QuantumSeed:       components.QuantumSeed,
		EntropySignature:  components.EntropySignature,
		EntanglementProof: components.EntanglementProof,
	}, nil
}

// SignTransaction signs a transaction twice: the provider's standard hex
// signature, then a quantum signature over the standard one. The two halves
// are joined by a colon; hex signatures can never contain one.
func (m *Manager) SignTransaction(w *QuantumWallet, transaction string) (string, error) {
	standard, err := m.provider.SignPayload(w.BaseWallet.PrivateKey, transaction)
	if err != nil {
		return "", fmt.Errorf("fail to sign transaction: %w", err)
	}
	return standard + ":" + quantum.Sign(standard, w.QuantumKeyPair), nil
}

// VerifySignedTransaction splits a signed transaction on the first colon and
// verifies the quantum half over the standard half. Malformed input returns
// false without error.
func (m *Manager) VerifySignedTransaction(signedTx string, w *QuantumWallet) bool {
	idx := strings.Index(signedTx, ":")
	if idx <= 0 || idx == len(signedTx)-1 {
		return false
	}
	standard, quantumSig := signedTx[:idx], signedTx[idx+1:]
	return quantum.Verify(standard, quantumSig, w.QuantumKeyPair)
}

// DeriveAddresses derives count addresses bound to the wallet's seed and
// entanglement hash. Deterministic and order-preserving. A non-positive
// count yields an empty slice.
func (m *Manager) DeriveAddresses(w *QuantumWallet, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}
	addresses := make([]string, 0, count)
	for i := 0; i < count; i++ {
		digest := harmonic.DeriveKey(w.QuantumSeed + w.QuantumKeyPair.EntanglementHash + strconv.Itoa(i))
		address, err := m.provider.DeriveAddress(digest)
		if err != nil {
			return nil, fmt.Errorf("fail to derive address %d: %w", i, err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// Identity returns the wallet's stable identity hash.
func (m *Manager) Identity(w *QuantumWallet) string {
	return hashHex(w.QuantumKeyPair.QuantumFingerprint + w.EntanglementProof + w.EntropySignature)
}
