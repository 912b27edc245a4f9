package harmonic

import (
	"fmt"
	"strconv"
	"strings"
)

// MnemonicWords is the fixed word count of an encoded mnemonic.
const MnemonicWords = 12

// vocabulary is the fixed 64-word list mnemonics are drawn from. Order is part
// of the wire format; never reorder or append.
var vocabulary = [64]string{
	"atom", "wave", "field", "pulse", "orbit", "prism", "flux", "nova",
	"quark", "spin", "phase", "drift", "lumen", "ion", "core", "arc",
	"echo", "ridge", "vapor", "ember", "cell", "helix", "node", "ray",
	"shard", "veil", "crest", "tide", "storm", "dust", "glow", "rift",
	"lattice", "cipher", "anchor", "beacon", "cobalt", "delta", "fathom", "garnet",
	"harbor", "indigo", "jasper", "keel", "lunar", "mantle", "nebula", "onyx",
	"pillar", "quartz", "raven", "sierra", "talon", "umber", "vertex", "willow",
	"xenon", "yonder", "zephyr", "argon", "boreal", "cinder", "dune", "ether",
}

var wordIndex = map[string]int{}

func init() {
	for i, w := range vocabulary {
		wordIndex[w] = i
	}
}

// InvalidMnemonicError reports a mnemonic that cannot be decoded: wrong word
// count or a word outside the vocabulary.
type InvalidMnemonicError struct {
	Reason string
}

func (e *InvalidMnemonicError) Error() string {
	return "invalid mnemonic: " + e.Reason
}

// RecoveredSeed is the result of decoding a mnemonic. Decoding is lossy: Seed
// is a derived seed suitable for regenerating a wallet deterministically, not
// the literal secret bytes that were encoded. The recovered word indices are
// retained so the canonical re-encoding reproduces the same twelve words.
type RecoveredSeed struct {
	Seed    string
	indices [MnemonicWords]int
}

// Mnemonic returns the canonical twelve-word encoding of the recovered seed.
func (r *RecoveredSeed) Mnemonic() []string {
	words := make([]string, MnemonicWords)
	for i, idx := range r.indices {
		words[i] = vocabulary[idx]
	}
	return words
}

// EncodeMnemonic maps secret material onto twelve vocabulary words. Each word
// is chosen by a 4-hex-char slice of the derived key, offset by the position's
// octave constant modulo the vocabulary size.
func EncodeMnemonic(secret string) []string {
	derived := DeriveKey(secret)
	words := make([]string, MnemonicWords)
	for i := 0; i < MnemonicWords; i++ {
		slice := derived[i*4 : i*4+4]
		v, _ := strconv.ParseUint(slice, 16, 32)
		idx := (v + uint64(octaveAt(i))) % uint64(len(vocabulary))
		words[i] = vocabulary[idx]
	}
	return words
}

// DecodeMnemonic recovers a deterministic seed from twelve vocabulary words by
// removing each position's octave offset and re-hashing the raw values.
func DecodeMnemonic(words []string) (*RecoveredSeed, error) {
	if len(words) != MnemonicWords {
		return nil, &InvalidMnemonicError{Reason: fmt.Sprintf("expected %d words, got %d", MnemonicWords, len(words))}
	}
	recovered := &RecoveredSeed{}
	raws := make([]string, MnemonicWords)
	for i, w := range words {
		idx, ok := wordIndex[strings.ToLower(strings.TrimSpace(w))]
		if !ok {
			return nil, &InvalidMnemonicError{Reason: "unknown word " + strconv.Quote(w)}
		}
		recovered.indices[i] = idx
		offset := int(uint64(octaveAt(i)) % uint64(len(vocabulary)))
		raw := (idx - offset + len(vocabulary)) % len(vocabulary)
		raws[i] = strconv.Itoa(raw)
	}
	recovered.Seed = hashHex(strings.Join(raws, "-") + seedConstant)
	return recovered, nil
}
