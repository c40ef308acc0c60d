package tunable

// Kind is the declared type of a tunable's value. Names are stable ASCII,
// at most 40 bytes, per the wire contract.
type Kind string

const (
	KindBool Kind = "bool"
	KindU8   Kind = "u8"
	KindI32  Kind = "i32"
	KindF32  Kind = "f32"
)

const MaxNameLen = 40

// Descriptor is the static shape of one tunable: everything about it
// except its current value.
type Descriptor struct {
	Name       string
	Kind       Kind
	Min        *float64 // nil means unbounded below
	Max        *float64 // nil means unbounded above
	Group      string
	Persistent bool
}

func kindOf[T bool | uint8 | int32 | float32]() Kind {
	var zero T

	switch any(zero).(type) {
	case bool:
		return KindBool
	case uint8:
		return KindU8
	case int32:
		return KindI32
	case float32:
		return KindF32
	default:
		return ""
	}
}

func inRange(desc Descriptor, f float64) bool {
	if desc.Min != nil && f < *desc.Min {
		return false
	}

	if desc.Max != nil && f > *desc.Max {
		return false
	}

	return true
}

func asFloat64[T bool | uint8 | int32 | float32](v T) (float64, bool) {
	switch val := any(v).(type) {
	case uint8:
		return float64(val), true
	case int32:
		return float64(val), true
	case float32:
		return float64(val), true
	default:
		return 0, false
	}
}
