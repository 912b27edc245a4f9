package wallet_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumshield/quantumwallet/internal/wallet"
)

func TestProviderRecoverDeterministic(t *testing.T) {
	p := wallet.NewSecp256k1Provider()
	mnemonic := sampleMnemonic()

	first, err := p.RecoverFromMnemonic(context.Background(), mnemonic, "passphrase")
	require.NoError(t, err)
	second, err := p.RecoverFromMnemonic(context.Background(), mnemonic, "passphrase")
	require.NoError(t, err)

	assert.Equal(t, first.PrivateKey, second.PrivateKey)
	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.Address, second.Address)

	other, err := p.RecoverFromMnemonic(context.Background(), mnemonic, "other passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, first.PrivateKey, other.PrivateKey)
}

func TestProviderSignPayloadHasNoColon(t *testing.T) {
	p := wallet.NewSecp256k1Provider()
	w, err := p.CreateWallet(context.Background(), "passphrase")
	require.NoError(t, err)

	sig, err := p.SignPayload(w.PrivateKey, "payload")
	require.NoError(t, err)
	// the transaction format reserves the colon as a delimiter
	assert.NotContains(t, sig, ":")
	assert.NotEmpty(t, sig)

	again, err := p.SignPayload(w.PrivateKey, "payload")
	require.NoError(t, err)
	assert.Equal(t, sig, again)
}

func TestProviderStorageBlobRoundTrip(t *testing.T) {
	p := wallet.NewSecp256k1Provider()
	w, err := p.CreateWallet(context.Background(), "passphrase")
	require.NoError(t, err)

	blob, err := p.EncryptForStorage(w, "storage password")
	require.NoError(t, err)
	assert.False(t, strings.Contains(blob, w.PrivateKey))

	restored, err := p.DecryptFromStorage(blob, "storage password")
	require.NoError(t, err)
	assert.Equal(t, w, restored)

	_, err = p.DecryptFromStorage(blob, "wrong password")
	assert.Error(t, err)
}

func TestProviderDeriveAddress(t *testing.T) {
	p := wallet.NewSecp256k1Provider()

	first, err := p.DeriveAddress("some digest material")
	require.NoError(t, err)
	second, err := p.DeriveAddress("some digest material")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "0x"))
	assert.Len(t, first, 42)

	other, err := p.DeriveAddress("other digest material")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}
