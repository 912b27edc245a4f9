package types

import "fmt"

// WalletCreateRequest asks the server to create a fresh quantum wallet.
type WalletCreateRequest struct {
	Passphrase        string `json:"passphrase" validate:"required"`
	AdditionalEntropy string `json:"additional_entropy"`
}

// WalletRecoverRequest rebuilds a wallet from its twelve-word mnemonic.
type WalletRecoverRequest struct {
	Mnemonic   string `json:"mnemonic" validate:"required"`
	Passphrase string `json:"passphrase" validate:"required"`
}

// TransactionSignRequest signs a transaction payload with a stored or
// caller-supplied wallet record.
type TransactionSignRequest struct {
	RecordID    string `json:"record_id" validate:"required"`
	Transaction string `json:"transaction" validate:"required"`
}

// TransactionVerifyRequest checks a dual signature against a wallet record.
type TransactionVerifyRequest struct {
	RecordID          string `json:"record_id" validate:"required"`
	SignedTransaction string `json:"signed_transaction" validate:"required"`
}

// AddressDeriveRequest asks for count deterministic derived addresses.
type AddressDeriveRequest struct {
	RecordID string `json:"record_id" validate:"required"`
	Count    int    `json:"count"`
}

// WalletStoreRequest stores an encrypted wallet record server-side. The
// wallet arrives already composed from a create or recover response; the
// storage passphrase rides in the x-password header, never in the body.
type WalletStoreRequest struct {
	Wallet string `json:"wallet" validate:"required"` // serialized QuantumWallet JSON
}

// WalletStoreResponse returns the id under which the record was stored.
type WalletStoreResponse struct {
	RecordID string `json:"record_id"`
	Identity string `json:"identity"`
}

// WalletRecordItem is an encrypted wallet record as cached in redis. Record
// holds the serialized EncryptedWalletRecord; no plaintext key material ever
// enters the cache.
type WalletRecordItem struct {
	RecordID string `json:"record_id"`
	Identity string `json:"identity"`
	Record   string `json:"record"`
}

func (w WalletRecordItem) Key() string {
	return fmt.Sprintf("wallet-record-%s", w.RecordID)
}

// WalletRecordKey builds the cache key for a record id.
func WalletRecordKey(recordID string) string {
	return fmt.Sprintf("wallet-record-%s", recordID)
}
