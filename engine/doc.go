// Package engine implements the numerical kernels behind the exposed
// image operations: spatial filters, frequency-domain multipliers,
// spline interpolation and geometric transforms, object measurement,
// and binary morphology with distance transforms.
//
// Kernels consume canonical arrays prepared by the array package and
// never coerce on their own. User callbacks arrive pre-resolved as the
// normalized root function types; the first callback error aborts the
// kernel. Invalid parameters (degenerate structuring elements, bad
// axes, rank mismatches) surface as engine errors before any output is
// touched.
package engine
