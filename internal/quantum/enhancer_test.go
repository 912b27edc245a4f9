package quantum

import (
	"testing"
)

const (
	testPublicKey  = "02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc"
	testPrivateKey = "1837c1be8e2995ec11cda2b066151be2cfb48adf9e47b151d46adab3a21cdf67"
)

func TestEnhanceDeterministic(t *testing.T) {
	first := Enhance(testPublicKey, testPrivateKey)
	second := Enhance(testPublicKey, testPrivateKey)

	if first.EntanglementHash != second.EntanglementHash {
		t.Fatal("entanglement hash not deterministic")
	}
	if first.QuantumFingerprint != second.QuantumFingerprint {
		t.Fatal("fingerprint not deterministic")
	}
	if first.LatticeSalt != second.LatticeSalt {
		t.Fatal("lattice salt not deterministic")
	}
	if len(first.SuperpositionStates) != superpositionCount {
		t.Fatalf("superposition state count: %d, expected %d", len(first.SuperpositionStates), superpositionCount)
	}
	for i := range first.SuperpositionStates {
		if first.SuperpositionStates[i] != second.SuperpositionStates[i] {
			t.Fatalf("superposition state %d not deterministic", i)
		}
	}
}

func TestEnhanceDistinctFields(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	seen := map[string]string{
		"entanglement": qkp.EntanglementHash,
		"fingerprint":  qkp.QuantumFingerprint,
		"salt":         qkp.LatticeSalt,
		"state0":       qkp.SuperpositionStates[0],
		"state1":       qkp.SuperpositionStates[1],
		"state2":       qkp.SuperpositionStates[2],
	}
	values := map[string]string{}
	for name, v := range seen {
		if prev, ok := values[v]; ok {
			t.Fatalf("%s collides with %s", name, prev)
		}
		values[v] = name
	}
}

func TestVerifyKeyPair(t *testing.T) {
	cases := []struct {
		name       string
		publicKey  string
		privateKey string
	}{
		{name: "hex keys", publicKey: testPublicKey, privateKey: testPrivateKey},
		{name: "empty keys", publicKey: "", privateKey: ""},
		{name: "empty private", publicKey: testPublicKey, privateKey: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qkp := Enhance(tc.publicKey, tc.privateKey)
			if !VerifyKeyPair(qkp) {
				t.Fatal("freshly enhanced pair failed verification")
			}
		})
	}
}

func TestVerifyKeyPairDetectsTampering(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	qkp.EntanglementHash = "z" + qkp.EntanglementHash[1:]
	if VerifyKeyPair(qkp) {
		t.Fatal("tampered entanglement hash passed verification")
	}

	qkp = Enhance(testPublicKey, testPrivateKey)
	qkp.PrivateKey = testPrivateKey[:len(testPrivateKey)-1] + "0"
	if VerifyKeyPair(qkp) {
		t.Fatal("swapped private key passed verification")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	messages := []string{"tx payload", "", "量子 ✨"}
	for _, m := range messages {
		sig := Sign(m, qkp)
		if sig != Sign(m, qkp) {
			t.Fatalf("signature not deterministic for %q", m)
		}
		if !Verify(m, sig, qkp) {
			t.Fatalf("valid signature rejected for %q", m)
		}
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	message := "tx payload"
	sig := Sign(message, qkp)

	tampered := []byte(message)
	tampered[0] ^= 0x01
	if Verify(string(tampered), sig, qkp) {
		t.Fatal("tampered message accepted")
	}

	badSig := []byte(sig)
	badSig[0] ^= 0x01
	if Verify(message, string(badSig), qkp) {
		t.Fatal("tampered signature accepted")
	}

	other := Enhance(testPublicKey, "another private key")
	if Verify(message, sig, other) {
		t.Fatal("signature accepted under a different key pair")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	cases := []struct {
		name string
		data string
	}{
		{name: "simple", data: "wallet components"},
		{name: "empty", data: ""},
		{name: "non-ascii", data: "データ ✨ blöb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := EncryptData(tc.data, qkp)
			if err != nil {
				t.Fatal(err)
			}
			if got := DecryptData(ciphertext, qkp); got != tc.data {
				t.Fatalf("decrypted: %q, expected: %q", got, tc.data)
			}
		})
	}
}

func TestDecryptDataWrongKeyPair(t *testing.T) {
	qkp := Enhance(testPublicKey, testPrivateKey)
	ciphertext, err := EncryptData("wallet components", qkp)
	if err != nil {
		t.Fatal(err)
	}
	other := Enhance(testPublicKey, "another private key")
	if got := DecryptData(ciphertext, other); got != "" {
		t.Fatalf("wrong key pair yielded %q, expected empty string", got)
	}
}

func TestDeriveSeed(t *testing.T) {
	if DeriveSeed("entropy") != DeriveSeed("entropy") {
		t.Fatal("seed derivation not deterministic")
	}
	if DeriveSeed("entropy") == DeriveSeed("entropy2") {
		t.Fatal("distinct entropy produced the same seed")
	}
	if len(DeriveSeed("entropy")) != 64 {
		t.Fatal("unexpected seed length")
	}
}
