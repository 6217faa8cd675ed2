package emnr

import "math"

// besselI0 approximates the modified Bessel function of the first kind,
// order 0, using the polynomial fit from Abramowitz & Stegun 9.8.1/9.8.2.
func besselI0(x float64) float64 {
	if x == 0 {
		return 1
	}
	if x < 0 {
		x = -x
	}
	if x <= 3.75 {
		t := x / 3.75
		p := t * t
		return (((((0.0045813*p+
			0.0360768)*p+
			0.2659732)*p+
			1.2067492)*p+
			3.0899424)*p+
			3.5156229)*p + 1.0
	}
	p := 3.75 / x
	return math.Exp(x) / math.Sqrt(x) *
		((((((((0.00392377*p-
			0.01647633)*p+
			0.02635537)*p-
			0.02057706)*p+
			0.00916281)*p-
			0.00157565)*p+
			0.00225319)*p +
			0.01328592)*p + 0.39894228)
}

// besselI1 approximates the modified Bessel function of the first kind,
// order 1, using the polynomial fit from Abramowitz & Stegun 9.8.3/9.8.4.
func besselI1(x float64) float64 {
	if x == 0 {
		return 0
	}
	neg := x < 0
	if neg {
		x = -x
	}
	var res float64
	if x <= 3.75 {
		t := x / 3.75
		p := t * t
		res = x * ((((((0.00032411*p+
			0.00301532)*p+
			0.02658733)*p+
			0.15084934)*p+
			0.51498869)*p+
			0.87890594)*p + 0.5)
	} else {
		p := 3.75 / x
		res = math.Exp(x) / math.Sqrt(x) *
			((((((((-0.00420059*p+
				0.01787654)*p-
				0.02895312)*p+
				0.02282967)*p-
				0.01031555)*p+
				0.00163801)*p-
				0.00362018)*p -
				0.03988024)*p + 0.39894228)
	}
	if neg {
		res = -res
	}
	return res
}

// e1 approximates the exponential integral E1(x) via the series expansion
// for x <= 1 and the continued fraction for x > 1 (Abramowitz & Stegun 5.1.53).
func e1(x float64) float64 {
	switch {
	case x == 0:
		return 1.0e300
	case x <= 1.0:
		e := 1.0
		r := 1.0
		for k := 1; k <= 25; k++ {
			r = -r * float64(k) * x / ((float64(k) + 1.0) * (float64(k) + 1.0))
			e += r
			if math.Abs(r) <= math.Abs(e)*1.0e-15 {
				break
			}
		}
		const euler = 0.5772156649015328
		return -euler - math.Log(x) + x*e
	default:
		m := 20 + int(80.0/x)
		t0 := 0.0
		for k := m; k >= 1; k-- {
			t0 = float64(k) / (1.0 + float64(k)/(x+t0))
		}
		t := 1.0 / (x + t0)
		return math.Exp(-x) * t
	}
}
