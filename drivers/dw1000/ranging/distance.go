package ranging

import (
	"errors"
	"math/bits"
)

// SpeedOfLight in m/s, which is also nm/ns.
const SpeedOfLight = 299_792_458

var (
	ErrRoundTripTimesTooLarge = errors.New("ranging: round-trip times too large")
	ErrReplyTimesTooLarge     = errors.New("ranging: reply times too large")
	ErrReplyExceedsRoundTrip  = errors.New("ranging: reply times exceed round-trip times")
	ErrSumTooLarge            = errors.New("ranging: sum of times too large")
	ErrZeroSum                = errors.New("ranging: all times are zero")
	ErrTimeOfFlightTooLarge   = errors.New("ranging: time of flight too large")
)

// TimeOfFlight computes the asymmetric double-sided TWR estimate
//
//	tof = (Tround1*Tround2 - Treply1*Treply2) / (Tround1+Tround2+Treply1+Treply2)
//
// in DW1000 time units. The request round trip is measured locally from the
// response's RX timestamp.
func TimeOfFlight(r Response) (uint64, error) {
	pingRTT := uint64(r.PingRoundTripTime)
	reqRTT := uint64(r.RxTime.Sub(r.RequestTxTime))
	pingReply := uint64(r.PingReplyTime)
	reqReply := uint64(r.RequestReplyTime)

	hi, rounds := bits.Mul64(pingRTT, reqRTT)
	if hi != 0 {
		return 0, ErrRoundTripTimesTooLarge
	}
	hi, replies := bits.Mul64(pingReply, reqReply)
	if hi != 0 {
		return 0, ErrReplyTimesTooLarge
	}
	num, borrow := bits.Sub64(rounds, replies, 0)
	if borrow != 0 {
		return 0, ErrReplyExceedsRoundTrip
	}
	var sum, carry, c uint64
	for _, v := range [...]uint64{pingRTT, reqRTT, pingReply, reqReply} {
		sum, c = bits.Add64(sum, v, 0)
		carry |= c
	}
	if carry != 0 {
		return 0, ErrSumTooLarge
	}
	if sum == 0 {
		return 0, ErrZeroSum
	}
	return num / sum, nil
}

// ComputeDistanceMM converts the response's time of flight to millimetres.
// A time unit is nominally 1/64 ns.
func ComputeDistanceMM(r Response) (uint64, error) {
	tof, err := TimeOfFlight(r)
	if err != nil {
		return 0, err
	}
	hi, nm64 := bits.Mul64(SpeedOfLight, tof)
	if hi != 0 {
		return 0, ErrTimeOfFlightTooLarge
	}
	return nm64 / 64 / 1_000_000, nil
}
