package light

import "math"

// maxByte is the upper bound of an 8-bit channel as a float.
const maxByte = 255.0

// percentMax is the upper bound of the external brightness scale.
const percentMax = 100

// SpectrumFromRGB packs an RGB triple into a 24-bit spectrum integer
// (0xRRGGBB), the representation the voice platform uses for colours.
func SpectrumFromRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// SpectrumToRGB splits a 24-bit spectrum integer back into its RGB
// components. The inverse of SpectrumFromRGB, byte-exact.
func SpectrumToRGB(spectrum uint32) (r, g, b uint8) {
	return uint8(spectrum >> 16), uint8(spectrum >> 8), uint8(spectrum)
}

// Spectrum renders the colour as a 24-bit spectrum integer. White
// colours are first approximated as RGB via KelvinToRGB.
func (c Color) Spectrum() uint32 {
	if c.Mode == ColorModeWhite {
		return SpectrumFromRGB(KelvinToRGB(c.Kelvin))
	}
	return SpectrumFromRGB(c.R, c.G, c.B)
}

// KelvinToRGB approximates the colour of a black-body radiator at the
// given temperature as an RGB triple, for backends that only understand
// RGB. The piecewise fit is parameterised on temperature/100: red
// saturates at 255 up to 6600K, green switches from a logarithmic to a
// power-law branch at 6600K, and blue is zero up to 1900K with a
// logarithmic ramp above. Lossy and one-directional; there is no inverse.
func KelvinToRGB(kelvin uint32) (r, g, b uint8) {
	t := float64(kelvin) / 100.0

	red := maxByte
	if t > 66 {
		red = 329.698727466 * math.Pow(t-60, -0.1332047592)
	}

	var green float64
	if t <= 66 {
		green = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		green = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	blue := maxByte
	if t < 65 {
		if t <= 19 {
			blue = 0
		} else {
			blue = 138.5177312231*math.Log(t-10) - 305.0447927307
		}
	}

	return clampByte(red), clampByte(green), clampByte(blue)
}

// RGBToHSB converts an RGB triple to hue (degrees, [0,360)), saturation
// ([0,1]) and brightness (the max component, 0-255), for backends that
// address colour in HSB space. Grey inputs (r==g==b) yield hue 0;
// saturation is 0 when the max component is 0.
func RGBToHSB(r, g, b uint8) (hue, saturation float64, brightness uint8) {
	rf := float64(r) / maxByte
	gf := float64(g) / maxByte
	bf := float64(b) / maxByte

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	if delta > 0 {
		switch maxC {
		case rf:
			hue = 60 * math.Mod((gf-bf)/delta, 6)
		case gf:
			hue = 60 * ((bf-rf)/delta + 2)
		default:
			hue = 60 * ((rf-gf)/delta + 4)
		}
		if hue < 0 {
			hue += 360
		}
	}

	if maxC > 0 {
		saturation = delta / maxC
	}

	return hue, saturation, uint8(math.Round(maxC * maxByte))
}

// BrightnessToPercent converts an internal brightness (0-255) to the
// external 0-100 percentage scale.
func BrightnessToPercent(level uint8) int {
	return int(math.Round(float64(level) / maxByte * percentMax))
}

// PercentToBrightness converts an external 0-100 percentage to the
// internal 0-255 scale. Out-of-range values are clamped rather than
// rejected so a slightly off payload still produces a usable command.
func PercentToBrightness(percent int) uint8 {
	if percent < 0 {
		percent = 0
	}
	if percent > percentMax {
		percent = percentMax
	}
	return uint8(math.Round(float64(percent) / percentMax * maxByte))
}

// clampByte converts a float to a uint8, saturating at the bounds.
func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > maxByte {
		return maxByte
	}
	return uint8(v)
}
