package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/common"
	"github.com/quantumshield/quantumwallet/internal/harmonic"
)

// BaseWallet is the record returned by the base wallet provider.
type BaseWallet struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Mnemonic   string `json:"mnemonic"`
	Address    string `json:"address"`
}

// Provider is the external base-wallet collaborator. Calls take a context
// because real providers (hardware wallets, remote signers) are I/O bound.
type Provider interface {
	CreateWallet(ctx context.Context, passphrase string) (*BaseWallet, error)
	RecoverFromMnemonic(ctx context.Context, mnemonic, passphrase string) (*BaseWallet, error)
	EncryptForStorage(w *BaseWallet, passphrase string) (string, error)
	DecryptFromStorage(blob, passphrase string) (*BaseWallet, error)
	SignPayload(privateKey, payload string) (string, error)
	DeriveAddress(material string) (string, error)
}

// Secp256k1Provider implements Provider on the secp256k1 curve. Wallet
// creation derives the private key from the freshly encoded mnemonic rather
// than the other way round, so recovery from the mnemonic reproduces the same
// key even though the mnemonic codec itself is lossy.
type Secp256k1Provider struct {
	logger *logrus.Entry
}

func NewSecp256k1Provider() *Secp256k1Provider {
	return &Secp256k1Provider{
		logger: logrus.WithField("module", "provider"),
	}
}

// keyFromSeed maps arbitrary seed material onto a valid secp256k1 scalar by
// re-hashing until the scalar falls inside the curve order.
func keyFromSeed(seed, passphrase string) (*ecdsa.PrivateKey, error) {
	material := crypto.Keccak256([]byte(seed + passphrase))
	for i := 0; i < 64; i++ {
		key, err := crypto.ToECDSA(material)
		if err == nil {
			return key, nil
		}
		material = crypto.Keccak256(material)
	}
	return nil, fmt.Errorf("fail to derive a valid key from seed")
}

func walletFromKey(key *ecdsa.PrivateKey, mnemonic string) *BaseWallet {
	return &BaseWallet{
		PublicKey:  hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey)),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		Mnemonic:   mnemonic,
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

func (p *Secp256k1Provider) CreateWallet(ctx context.Context, passphrase string) (*BaseWallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entropy, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("fail to generate entropy: %w", err)
	}
	words := harmonic.EncodeMnemonic(hex.EncodeToString(crypto.FromECDSA(entropy)))
	mnemonic := strings.Join(words, " ")
	recovered, err := harmonic.DecodeMnemonic(words)
	if err != nil {
		return nil, fmt.Errorf("fail to decode fresh mnemonic: %w", err)
	}
	key, err := keyFromSeed(recovered.Seed, passphrase)
	if err != nil {
		return nil, err
	}
	p.logger.WithField("address", crypto.PubkeyToAddress(key.PublicKey).Hex()).Info("created base wallet")
	return walletFromKey(key, mnemonic), nil
}

func (p *Secp256k1Provider) RecoverFromMnemonic(ctx context.Context, mnemonic, passphrase string) (*BaseWallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recovered, err := harmonic.DecodeMnemonic(strings.Fields(mnemonic))
	if err != nil {
		return nil, err
	}
	key, err := keyFromSeed(recovered.Seed, passphrase)
	if err != nil {
		return nil, err
	}
	return walletFromKey(key, strings.Join(recovered.Mnemonic(), " ")), nil
}

func (p *Secp256k1Provider) EncryptForStorage(w *BaseWallet, passphrase string) (string, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("fail to serialize base wallet: %w", err)
	}
	sealed, err := common.EncryptGCM(passphrase, data)
	if err != nil {
		return "", fmt.Errorf("fail to encrypt base wallet: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (p *Secp256k1Provider) DecryptFromStorage(blob, passphrase string) (*BaseWallet, error) {
	sealed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("fail to decode base wallet blob: %w", err)
	}
	data, err := common.DecryptGCM(passphrase, sealed)
	if err != nil {
		return nil, fmt.Errorf("fail to decrypt base wallet: %w", err)
	}
	var w BaseWallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("fail to deserialize base wallet: %w", err)
	}
	return &w, nil
}

func (p *Secp256k1Provider) SignPayload(privateKey, payload string) (string, error) {
	key, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return "", fmt.Errorf("fail to parse private key: %w", err)
	}
	sig, err := crypto.Sign(crypto.Keccak256([]byte(payload)), key)
	if err != nil {
		return "", fmt.Errorf("fail to sign payload: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

func (p *Secp256k1Provider) DeriveAddress(material string) (string, error) {
	key, err := keyFromSeed(material, "")
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
