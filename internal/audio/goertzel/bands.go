package goertzel

// BandWeights is the compile-time mapping from the 64 semitone bins to 8
// mel-weighted band outputs. Row i holds, for each of the 64 bins, the
// weight it contributes to band i. Built once by DefaultBandWeights.
type BandWeights [8][64]float32

// DefaultBandWeights builds a mel-spaced weighting: the 8 band centres
// sit 8 semitones apart across the 64 bins, and each band weights bins
// with a triangle that falls to zero 8 semitones either side of its
// centre (so neighbouring bands overlap), which is the simplest mel-like
// aggregation that keeps band energy roughly continuous across bands.
func DefaultBandWeights() BandWeights {
	var w BandWeights

	const binsPerBand = 64 / 8

	for band := range w {
		centre := float32(band)*binsPerBand + binsPerBand/2

		for bin := range w[band] {
			dist := abs32(float32(bin) - centre)
			weight := 1 - dist/float32(binsPerBand)

			if weight < 0 {
				weight = 0
			}

			w[band][bin] = weight
		}
	}

	return w
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}

// Aggregate reduces bins64 to 8 band energies using w.
func Aggregate(bins64 [64]float32, w BandWeights) [8]float32 {
	var bands [8]float32

	for band := range bands {
		var sum float32
		for bin, v := range bins64 {
			sum += v * w[band][bin]
		}

		bands[band] = sum
	}

	return bands
}

// ChromaFold folds the 64 semitone bins into 12 pitch classes by octave
// collapse: bin i belongs to pitch class i%12, summed across its octaves.
func ChromaFold(bins64 [64]float32) [12]float32 {
	var chroma [12]float32
	for i, v := range bins64 {
		chroma[i%12] += v
	}

	return chroma
}
