package wallet

// WalletRecoveryError reports that the base wallet provider rejected the
// mnemonic/passphrase pair during recovery.
type WalletRecoveryError struct {
	Err error
}

func (e *WalletRecoveryError) Error() string {
	return "fail to recover wallet: " + e.Err.Error()
}

func (e *WalletRecoveryError) Unwrap() error {
	return e.Err
}

// WalletDecryptionError reports a malformed storage record or a wrong
// passphrase during storage decryption.
type WalletDecryptionError struct {
	Err error
}

func (e *WalletDecryptionError) Error() string {
	return "fail to decrypt wallet from storage: " + e.Err.Error()
}

func (e *WalletDecryptionError) Unwrap() error {
	return e.Err
}

// QuantumIntegrityError reports that a decrypted key pair failed
// re-verification against its stored entanglement hash and fingerprint.
type QuantumIntegrityError struct{}

func (e *QuantumIntegrityError) Error() string {
	return "quantum key pair failed integrity verification"
}
