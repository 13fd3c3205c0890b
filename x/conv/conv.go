// Package conv formats integers into caller-owned byte slices so the MCU log
// path needs neither fmt nor strconv.
package conv

const hexd = "0123456789abcdef"

// AppendUint appends the decimal form of n to b.
func AppendUint(b []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(b, tmp[i:]...)
}

// AppendInt appends the decimal form of n to b, including math.MinInt64.
func AppendInt(b []byte, n int64) []byte {
	if n >= 0 {
		return AppendUint(b, uint64(n))
	}
	b = append(b, '-')
	return AppendUint(b, uint64(-(n+1))+1)
}

// AppendHex16 appends n as four lowercase hex digits.
func AppendHex16(b []byte, n uint16) []byte {
	return append(b, hexd[n>>12&0xF], hexd[n>>8&0xF], hexd[n>>4&0xF], hexd[n&0xF])
}

// AddrHex formats a PAN id and short address as "pppp:aaaa".
func AddrHex(pan, addr uint16) string {
	b := make([]byte, 0, 9)
	b = AppendHex16(b, pan)
	b = append(b, ':')
	return string(AppendHex16(b, addr))
}
