package wallet_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumshield/quantumwallet/internal/harmonic"
	"github.com/quantumshield/quantumwallet/internal/quantum"
	"github.com/quantumshield/quantumwallet/internal/wallet"
)

func newManager() *wallet.Manager {
	return wallet.NewManager(wallet.NewSecp256k1Provider())
}

func sampleMnemonic() string {
	return strings.Join(harmonic.EncodeMnemonic("a 32-byte sample secret goes here"), " ")
}

func TestCreateWallet(t *testing.T) {
	m := newManager()
	w, err := m.Create(context.Background(), "passphrase", "extra entropy")
	require.NoError(t, err)

	assert.NotEmpty(t, w.BaseWallet.PrivateKey)
	assert.NotEmpty(t, w.BaseWallet.Mnemonic)
	assert.True(t, strings.HasPrefix(w.BaseWallet.Address, "0x"))
	assert.True(t, quantum.VerifyKeyPair(w.QuantumKeyPair))
	assert.NotEmpty(t, w.QuantumSeed)
	assert.NotEmpty(t, w.EntropySignature)
	assert.NotEmpty(t, w.EntanglementProof)
}

func TestCreateWalletsAreUnique(t *testing.T) {
	m := newManager()
	first, err := m.Create(context.Background(), "passphrase", "")
	require.NoError(t, err)
	second, err := m.Create(context.Background(), "passphrase", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.QuantumSeed, second.QuantumSeed)
	assert.NotEqual(t, first.BaseWallet.PrivateKey, second.BaseWallet.PrivateKey)
	assert.NotEqual(t, m.Identity(first), m.Identity(second))
}

func TestRecoverIsDeterministic(t *testing.T) {
	m := newManager()
	mnemonic := sampleMnemonic()

	first, err := m.Recover(context.Background(), mnemonic, "passphrase")
	require.NoError(t, err)
	second, err := m.Recover(context.Background(), mnemonic, "passphrase")
	require.NoError(t, err)

	assert.Equal(t, first.BaseWallet.PrivateKey, second.BaseWallet.PrivateKey)
	assert.Equal(t, first.QuantumSeed, second.QuantumSeed)
	assert.Equal(t, first.QuantumKeyPair, second.QuantumKeyPair)
	assert.Equal(t, first.EntropySignature, second.EntropySignature)
	assert.Equal(t, first.EntanglementProof, second.EntanglementProof)
	assert.Equal(t, m.Identity(first), m.Identity(second))
}

func TestRecoverMatchesCreatedKeyPair(t *testing.T) {
	m := newManager()
	created, err := m.Create(context.Background(), "passphrase", "")
	require.NoError(t, err)

	recovered, err := m.Recover(context.Background(), created.BaseWallet.Mnemonic, "passphrase")
	require.NoError(t, err)

	// the key pair survives recovery; the quantum seed does not, because
	// creation mixes in a time nonce
	assert.Equal(t, created.BaseWallet.PrivateKey, recovered.BaseWallet.PrivateKey)
	assert.Equal(t, created.QuantumKeyPair.EntanglementHash, recovered.QuantumKeyPair.EntanglementHash)
	assert.Equal(t, created.QuantumKeyPair.QuantumFingerprint, recovered.QuantumKeyPair.QuantumFingerprint)
	assert.NotEqual(t, created.QuantumSeed, recovered.QuantumSeed)
}

func TestRecoverRejectsBadMnemonic(t *testing.T) {
	m := newManager()

	_, err := m.Recover(context.Background(), "atom wave", "passphrase")
	var invalid *harmonic.InvalidMnemonicError
	assert.ErrorAs(t, err, &invalid)

	words := strings.Fields(sampleMnemonic())
	words[3] = "notaword"
	_, err = m.Recover(context.Background(), strings.Join(words, " "), "passphrase")
	assert.ErrorAs(t, err, &invalid)
}

func TestStorageRoundTrip(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	record, err := m.EncryptForStorage(w, "storage password")
	require.NoError(t, err)
	assert.NotContains(t, record, w.BaseWallet.PrivateKey)

	unlocked, err := m.DecryptFromStorage(record, "storage password")
	require.NoError(t, err)

	assert.Equal(t, w.QuantumKeyPair.QuantumFingerprint, unlocked.QuantumKeyPair.QuantumFingerprint)
	assert.Equal(t, w.QuantumKeyPair.EntanglementHash, unlocked.QuantumKeyPair.EntanglementHash)
	assert.Equal(t, w.BaseWallet.Address, unlocked.BaseWallet.Address)
	assert.Equal(t, w.EntropySignature, unlocked.EntropySignature)
	assert.Equal(t, w.EntanglementProof, unlocked.EntanglementProof)
	assert.Equal(t, w.QuantumSeed, unlocked.QuantumSeed)

	original, err := m.DeriveAddresses(w, 3)
	require.NoError(t, err)
	restored, err := m.DeriveAddresses(unlocked, 3)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestStorageRoundTripCreatedWallet(t *testing.T) {
	m := newManager()
	w, err := m.Create(context.Background(), "passphrase", "")
	require.NoError(t, err)

	// the storage password is unrelated to the wallet passphrase; the seed
	// must still survive the round trip so derived addresses stay stable
	record, err := m.EncryptForStorage(w, "storage password")
	require.NoError(t, err)
	unlocked, err := m.DecryptFromStorage(record, "storage password")
	require.NoError(t, err)

	assert.Equal(t, w.QuantumSeed, unlocked.QuantumSeed)
	original, err := m.DeriveAddresses(w, 3)
	require.NoError(t, err)
	restored, err := m.DeriveAddresses(unlocked, 3)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestStorageWrongPassword(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	record, err := m.EncryptForStorage(w, "storage password")
	require.NoError(t, err)

	_, err = m.DecryptFromStorage(record, "wrong password")
	var decryption *wallet.WalletDecryptionError
	assert.ErrorAs(t, err, &decryption)
}

func TestStorageMalformedRecord(t *testing.T) {
	m := newManager()
	_, err := m.DecryptFromStorage("not json", "password")
	var decryption *wallet.WalletDecryptionError
	assert.ErrorAs(t, err, &decryption)
}

func TestTransactionSignVerifyRoundTrip(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	signed, err := m.SignTransaction(w, `{"to":"0xabc","value":10}`)
	require.NoError(t, err)

	parts := strings.SplitN(signed, ":", 2)
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])

	assert.True(t, m.VerifySignedTransaction(signed, w))
}

func TestVerifySignedTransactionRejectsCorruption(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	signed, err := m.SignTransaction(w, "payload")
	require.NoError(t, err)

	corruptedStandard := "f" + signed[1:]
	if corruptedStandard == signed {
		corruptedStandard = "0" + signed[1:]
	}
	assert.False(t, m.VerifySignedTransaction(corruptedStandard, w))

	corruptedQuantum := signed[:len(signed)-1] + "f"
	if corruptedQuantum == signed {
		corruptedQuantum = signed[:len(signed)-1] + "0"
	}
	assert.False(t, m.VerifySignedTransaction(corruptedQuantum, w))

	assert.False(t, m.VerifySignedTransaction("deadbeef", w))
	assert.False(t, m.VerifySignedTransaction(":", w))
	assert.False(t, m.VerifySignedTransaction("", w))
}

func TestDeriveAddresses(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	first, err := m.DeriveAddresses(w, wallet.DefaultAddressCount)
	require.NoError(t, err)
	second, err := m.DeriveAddresses(w, wallet.DefaultAddressCount)
	require.NoError(t, err)

	assert.Len(t, first, wallet.DefaultAddressCount)
	assert.Equal(t, first, second)

	seen := map[string]bool{}
	for _, a := range first {
		assert.True(t, strings.HasPrefix(a, "0x"))
		assert.False(t, seen[a], "duplicate derived address %s", a)
		seen[a] = true
	}

	none, err := m.DeriveAddresses(w, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	negative, err := m.DeriveAddresses(w, -3)
	require.NoError(t, err)
	assert.Empty(t, negative)
}

func TestIdentity(t *testing.T) {
	m := newManager()
	w, err := m.Recover(context.Background(), sampleMnemonic(), "passphrase")
	require.NoError(t, err)

	assert.Equal(t, m.Identity(w), m.Identity(w))

	other, err := m.Recover(context.Background(), sampleMnemonic(), "other passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, m.Identity(w), m.Identity(other))
}
