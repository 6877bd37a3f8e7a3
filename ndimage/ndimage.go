package ndimage

import (
	"go.uber.org/zap"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/engine"
	"github.com/gridpointai/nd-runtime/errors"
	"github.com/gridpointai/nd-runtime/resource"
)

// DimSlice is a half-open index range along one dimension.
type DimSlice = engine.DimSlice

// Region is the bounding box of one labeled object.
type Region = engine.Region

// Metric selects the distance measure for distance transforms.
type Metric = engine.Metric

const (
	MetricEuclidean  = engine.MetricEuclidean
	MetricCityBlock  = engine.MetricCityBlock
	MetricChessboard = engine.MetricChessboard
)

// FourierKind selects the frequency-domain multiplier family.
type FourierKind = engine.FourierKind

const (
	FourierGaussian  = engine.FourierGaussian
	FourierUniform   = engine.FourierUniform
	FourierEllipsoid = engine.FourierEllipsoid
)

// table holds state retained across calls behind opaque handles.
var table = resource.NewTable()

type logObserver struct{}

func (logObserver) OnHandleEvent(ev resource.Event) {
	engine.Logger().Debug("handle lifecycle",
		zap.Uint8("event", uint8(ev.Type)),
		zap.Uint64("handle", uint64(ev.Handle)),
		zap.Uint32("kind", uint32(ev.Kind)),
	)
}

func init() {
	table.Subscribe(logObserver{})
}

// CloseHandles drops all retained state. Intended for shutdown paths.
func CloseHandles() error {
	return table.Close()
}

func checkMode(mode ndruntime.ExtendMode) error {
	if !mode.Valid() {
		return errors.InvalidInput(errors.PhaseCoerce, "unknown extend mode %d", int(mode))
	}
	return nil
}

// floatSeq converts a host value into a float sequence: a []float64 is
// copied, anything else coerces through the scope as a flat array.
// nil yields nil.
func floatSeq(s *array.Scope, value any, path string) ([]float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	}
	a, err := s.InputAt(value, array.Float64, array.Standard, path)
	if err != nil {
		return nil, err
	}
	return a.Float64s(), nil
}

// intSeq converts a host value into an owned int sequence; nil yields
// nil.
func intSeq(value any) ([]int, error) {
	if value == nil {
		return nil, nil
	}
	return array.ToIntSlice(value)
}
