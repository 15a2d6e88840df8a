package feedback

import "math"

// ScoreCurveParams maps a provider-native 0-10 rating onto the stored
// 0-100 scale. The mapping is a two-segment piecewise-linear curve with a
// knee: ratings at or below Knee scale linearly up to KneeOut, the rest
// stretches linearly to 100. The exact shape is tunable policy, not a
// behavioral contract; defaults approximate the historically observed
// scoring.
type ScoreCurveParams struct {
	Knee    float64 // rating where the curve changes slope
	KneeOut float64 // stored score produced exactly at Knee
}

func DefaultScoreCurve() ScoreCurveParams {
	return ScoreCurveParams{Knee: 6.0, KneeOut: 55.0}
}

// Map converts raw on the 0-10 scale to the 0-100 scale, clamping both
// input and output.
func (p ScoreCurveParams) Map(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	if raw < 0 {
		raw = 0
	}
	if raw > 10 {
		raw = 10
	}

	knee := p.Knee
	if knee <= 0 || knee >= 10 {
		knee = 6.0
	}
	kneeOut := p.KneeOut
	if kneeOut <= 0 || kneeOut >= 100 {
		kneeOut = 55.0
	}

	var out float64
	if raw <= knee {
		out = raw * (kneeOut / knee)
	} else {
		out = kneeOut + (raw-knee)*((100-kneeOut)/(10-knee))
	}

	return clampScore(out)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return math.Round(v*10) / 10
}
