package errcode

// Code is a stable error identifier shared by the radio, control and node
// layers. It is a string newtype, comparable, allocation-free, and implements
// error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Interface is a bus/transport failure talking to a peripheral.
	Interface Code = "interface"
	// RadioFault is a device-reported fault; see E.Fault for the fault code.
	RadioFault Code = "radio_fault"
	// InvalidState is an operation attempted in a state that does not allow it.
	InvalidState Code = "invalid_state"
	// WouldBlock means the result is not ready yet.
	WouldBlock Code = "would_block"

	Error Code = "error" // generic fallback
)

// NoFault marks an E that carries no device fault code.
const NoFault = -1

// E keeps a Code together with the operation, an optional device fault code
// and the underlying cause.
type E struct {
	C     Code
	Op    string
	Fault int
	Msg   string
	Err   error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.RadioFault) match a wrapped E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an E with no fault code.
func Wrap(c Code, op string, err error) *E {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &E{C: c, Op: op, Fault: NoFault, Msg: msg, Err: err}
}

// Fault builds a RadioFault E carrying a device fault code.
func Fault(op string, fault int, err error) *E {
	e := Wrap(RadioFault, op, err)
	e.Fault = fault
	return e
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if inner := u.Unwrap(); inner != nil {
			return Of(inner)
		}
	}
	return Error
}

// FaultOf returns the device fault code carried by err, or NoFault.
func FaultOf(err error) int {
	for err != nil {
		if e, ok := err.(*E); ok {
			return e.Fault
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return NoFault
		}
		err = u.Unwrap()
	}
	return NoFault
}
