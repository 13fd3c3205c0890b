//go:build !rp2040

package platform

// Open has no hardware to open on this target; use the simulator.
func Open() (*Board, error) { return nil, ErrNoBoard }
