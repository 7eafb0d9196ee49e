package reconstruction

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"tomograph/pkg/radon"
)

// ValidationMetrics compares the final reconstruction with the scanned image.
// Both are normalized to [0, 1] first, since backprojection does not
// preserve absolute intensities.
type ValidationMetrics struct {
	// Compared is false when the source and output sizes differ and no
	// metrics were computed.
	Compared bool

	// RMSE (Root Mean Square Error) of the normalized intensities. Lower
	// values indicate better reconstruction fidelity.
	RMSE float64

	// SSIM (Structural Similarity Index) computed globally over the image.
	// Values range from -1 to 1, with 1 indicating perfect similarity.
	SSIM float64

	// Correlation is the Pearson correlation of the two images.
	Correlation float64
}

func calculateValidationMetrics(source, final *mat.Dense) ValidationMetrics {
	n := radon.WorkingSize(source)
	size, _ := final.Dims()
	if n != size {
		return ValidationMetrics{}
	}

	original := normalize(mat.DenseCopyOf(source.Slice(0, n, 0, n)).RawMatrix().Data)
	reconstructed := normalize(mat.DenseCopyOf(final).RawMatrix().Data)

	correlation := stat.Correlation(original, reconstructed, nil)
	if math.IsNaN(correlation) {
		correlation = 0
	}
	return ValidationMetrics{
		Compared:    true,
		RMSE:        calculateRMSE(original, reconstructed),
		SSIM:        calculateSSIM(original, reconstructed),
		Correlation: correlation,
	}
}

// normalize rescales data in place to [0, 1]; a flat slice becomes all zeros.
func normalize(data []float64) []float64 {
	low, high := floats.Min(data), floats.Max(data)
	if high <= low {
		for i := range data {
			data[i] = 0
		}
		return data
	}
	floats.AddConst(-low, data)
	floats.Scale(1/(high-low), data)
	return data
}

// calculateRMSE computes the root mean square error
func calculateRMSE(original, reconstructed []float64) float64 {
	n := len(original)
	if n != len(reconstructed) || n == 0 {
		return 0
	}
	return floats.Distance(original, reconstructed, 2) / math.Sqrt(float64(n))
}

// calculateSSIM computes a global SSIM: one luminance, contrast and
// structure term over the whole image instead of the mean over sliding
// windows. Both inputs are expected in [0, 1].
func calculateSSIM(original, reconstructed []float64) float64 {
	const (
		dynamicRange = 1.0
		k1           = 0.01
		k2           = 0.03
	)
	c1 := math.Pow(k1*dynamicRange, 2)
	c2 := math.Pow(k2*dynamicRange, 2)

	n := len(original)
	if n != len(reconstructed) || n < 2 {
		return 0
	}

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)

	sigmaX := stat.Variance(original, nil)
	sigmaY := stat.Variance(reconstructed, nil)
	sigmaXY := stat.Covariance(original, reconstructed, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den <= 0 {
		return 0
	}
	return num / den
}
