package mathx

// ScaleU16 maps x in [0,inMax] onto [0,outMax] with 32-bit intermediates,
// truncating. Inputs above inMax clamp to outMax; inMax == 0 yields 0.
func ScaleU16(x, inMax uint16, outMax uint32) uint32 {
	if inMax == 0 {
		return 0
	}
	if x > inMax {
		x = inMax
	}
	return uint32(x) * outMax / uint32(inMax)
}
