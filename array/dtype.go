package array

// DType is the element type tag of an array view.
type DType uint8

const (
	// Any requests coercion without a target element type: the source
	// type is kept as long as the layout complies.
	Any DType = iota
	Bool
	Uint8
	Int16
	Int32
	Int64
	Float32
	Float64
	Complex128
)

var dtypeNames = map[DType]string{
	Any:        "any",
	Bool:       "bool",
	Uint8:      "uint8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Float32:    "float32",
	Float64:    "float64",
	Complex128: "complex128",
}

func (t DType) String() string {
	if s, ok := dtypeNames[t]; ok {
		return s
	}
	return "invalid"
}

// Size returns the element width in bytes.
func (t DType) Size() int {
	switch t {
	case Bool, Uint8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	case Complex128:
		return 16
	}
	return 0
}

// IsInteger reports whether t is a boolean or integer type.
func (t DType) IsInteger() bool {
	switch t {
	case Bool, Uint8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsComplex reports whether t is a complex type.
func (t DType) IsComplex() bool {
	return t == Complex128
}

// Flags describe the layout and access properties of a view.
type Flags uint8

const (
	FlagContiguous Flags = 1 << iota
	FlagAligned
	FlagNativeOrder
	FlagWritable
	// FlagOwned marks storage allocated by this package rather than
	// borrowed from the caller.
	FlagOwned
)

// Canonical is the layout the engine trusts without per-flag inspection.
const Canonical = FlagContiguous | FlagAligned | FlagNativeOrder | FlagWritable

// Req is a set of properties a coercion request demands of a view.
type Req uint8

const (
	ReqContiguous Req = 1 << iota
	ReqAligned
	ReqNativeOrder
	ReqWritable
	// ReqEnsureCopy forces a copy even from a compliant source.
	ReqEnsureCopy
)

// Standard is the requirement set used for engine arguments.
const Standard = ReqContiguous | ReqAligned | ReqNativeOrder
