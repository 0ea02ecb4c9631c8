package embedding

import "math"

// PoincareDistance computes the distance between u and v in the Poincaré
// ball of curvature -K, where K = |curvature|: the curvature may be passed
// with either sign (the config default is -1.0), and 0 is treated as 1. Falls back to +Inf when the denominator is
// non-positive (either point outside or on the ball boundary).
func PoincareDistance(u, v []float32, curvature float64) float64 {
	k := math.Abs(curvature)
	if k == 0 {
		k = 1
	}

	var diffSq, normU, normV float64
	n := len(u)
	if len(v) < n {
		n = len(v)
	}
	for i := 0; i < n; i++ {
		d := float64(u[i]) - float64(v[i])
		diffSq += d * d
		normU += float64(u[i]) * float64(u[i])
		normV += float64(v[i]) * float64(v[i])
	}

	denom := (1 - normU) * (1 - normV)
	if denom <= 0 {
		return math.Inf(1)
	}

	arg := 1 + 2*k*diffSq/denom
	return (1 / math.Sqrt(k)) * math.Acosh(arg)
}

// MobiusAdd computes Möbius addition u ⊕ v in the Poincaré ball of
// curvature -K.
func MobiusAdd(u, v []float32, curvature float64) []float32 {
	k := math.Abs(curvature)
	if k == 0 {
		k = 1
	}

	n := len(u)
	if len(v) < n {
		n = len(v)
	}

	uv := 0.0
	u2 := 0.0
	v2 := 0.0
	for i := 0; i < n; i++ {
		uv += float64(u[i]) * float64(v[i])
		u2 += float64(u[i]) * float64(u[i])
		v2 += float64(v[i]) * float64(v[i])
	}

	a := 1 + 2*k*uv + k*v2
	b := 1 - k*u2
	denom := 1 + 2*k*uv + k*k*u2*v2

	out := make([]float32, n)
	if denom == 0 {
		copy(out, u[:n])
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = float32((a*float64(u[i]) + b*float64(v[i])) / denom)
	}
	return out
}

// ExpMap0 is the exponential map from the tangent space at the origin into
// the Poincaré ball of curvature -K: tanh(√K ‖v‖)/(√K ‖v‖) · v.
func ExpMap0(v []float32, curvature float64) []float32 {
	k := math.Abs(curvature)
	if k == 0 {
		k = 1
	}
	sqrtK := math.Sqrt(k)

	norm := L2Norm(v)
	if norm == 0 {
		return append([]float32(nil), v...)
	}

	scale := math.Tanh(sqrtK*norm) / (sqrtK * norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(scale * float64(x))
	}
	return out
}
