package harmonic

// seedConstant is folded into every passphrase before the first hash round so
// that derived keys never collide with a plain sha256 of the passphrase.
const seedConstant = "harmonic-resonance-field-v1"

const (
	GoldenRatio  = 1.618033988749895
	SilverRatio  = 2.414213562373095
	PlasticRatio = 1.324717957244746
)

// The twelve octave constants follow the doubling series rooted at A0 (27.5 Hz).
var octaves = [12]float64{
	27.5, 55, 110, 220, 440, 880,
	1760, 3520, 7040, 14080, 28160, 56320,
}

// Golden-section fractions used as phase shifts during key derivation.
var phaseShifts = [3]float64{0.236067977, 0.381966011, 0.618033989}

var fibWeights = [13]uint64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233}

func octaveAt(i int) float64 {
	return octaves[i%len(octaves)]
}

func phaseAt(i int) float64 {
	return phaseShifts[i%len(phaseShifts)]
}

// FibWeight returns the i-th Fibonacci weight, wrapping past the table end.
func FibWeight(i int) uint64 {
	return fibWeights[i%len(fibWeights)]
}

// Rounds is the number of mixing rounds shared by key derivation and the
// entanglement procedures built on top of it.
const Rounds = 12
