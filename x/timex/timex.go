package timex

import "time"

// ReferenceHz is the CPU clock the firmware periods are expressed against.
const ReferenceHz = 64_000_000

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Cycles converts a cycle count at hz into a duration.
// hz==0 is coerced to ReferenceHz.
func Cycles(n uint64, hz uint32) time.Duration {
	if hz == 0 {
		hz = ReferenceHz
	}
	whole := n / uint64(hz)
	rem := n % uint64(hz)
	return time.Duration(whole)*time.Second + time.Duration(rem*1_000_000_000/uint64(hz))
}
