package signal

// SmoothingRadiusCap bounds the centered moving-average half-width.
const SmoothingRadiusCap = 5

// SmoothingRadius returns the moving-average radius for an input of length n:
// min(5, n/10).
func SmoothingRadius(n int) int {
	w := n / 10
	if w > SmoothingRadiusCap {
		w = SmoothingRadiusCap
	}
	return w
}

// Condition removes the DC offset by mean subtraction and applies a centered
// moving-average filter of radius SmoothingRadius(n). The result has length
// n - 2w; the w samples at each edge have no full window and are trimmed.
// Purely a function of its input: identical inputs yield identical outputs.
func Condition(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	normalized := make([]float64, n)
	for i, v := range values {
		normalized[i] = v - mean
	}

	w := SmoothingRadius(n)
	if w == 0 {
		return normalized
	}

	span := float64(2*w + 1)
	smoothed := make([]float64, 0, n-2*w)
	for i := w; i < n-w; i++ {
		var windowSum float64
		for j := i - w; j <= i+w; j++ {
			windowSum += normalized[j]
		}
		smoothed = append(smoothed, windowSum/span)
	}
	return smoothed
}
