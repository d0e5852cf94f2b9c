// Package reslice implements the resampling engine: index-matrix
// construction, the general and permute execute paths, the tile driver,
// and the top-level Engine that ties geometry derivation, interpolation,
// conversion, and stencil handling into one pass.
package reslice

import (
	"fmt"
	"log"
	"time"

	"mrireslice/pkg/convert"
	"mrireslice/pkg/geometry"
	"mrireslice/pkg/interpolate"
	"mrireslice/pkg/matrix"
	"mrireslice/pkg/stencil"
	"mrireslice/pkg/transform"
	"mrireslice/pkg/voxel"
)

// InterpolationMode selects a built-in interpolator when the caller does
// not supply one directly (spec.md §6 "interpolation_mode").
type InterpolationMode int

const (
	ModeNearest InterpolationMode = iota
	ModeLinear
	ModeCubic
)

// ProgressCallback reports tile-level completion, mirroring the teacher's
// stage-progress printing (pkg/reconstruction/reconstructor.go).
type ProgressCallback func(completed, total int, message string)

// Params is the top-level filter state of spec.md §6.
type Params struct {
	ResliceAxes                 matrix.Mat4
	ResliceTransform             transform.PointTransform
	InformationInput             *voxel.GridInfo

	OutputSpacing        [3]float64
	ComputeOutputSpacing bool
	OutputOrigin         [3]float64
	ComputeOutputOrigin  bool
	OutputDirection      [3][3]float64
	PassDirectionToOutput bool
	OutputExtent         voxel.Extent
	ComputeOutputExtent  bool
	OutputDimensionality int
	OutputScalarType     voxel.Kind
	OutputScalarTypeSet  bool

	InterpolationMode InterpolationMode
	Interpolator      interpolate.Interpolator

	BorderMode     interpolate.BorderMode
	BorderThickness float64

	SlabNumberOfSlices       int
	SlabMode                 convert.SlabMode
	SlabTrapezoidIntegration bool
	SlabSliceSpacingFraction float64

	ScalarShift float64
	ScalarScale float64

	BackgroundColor [4]float64

	AutoCropOutput         bool
	TransformInputSampling bool
	Optimization           bool
	GenerateStencilOutput  bool

	InputStencil stencil.Stencil

	NumWorkers int
	Progress   ProgressCallback
}

// DefaultParams returns the spec.md §6 default parameter set.
func DefaultParams() Params {
	return Params{
		ResliceAxes:              matrix.Identity4(),
		ComputeOutputSpacing:     true,
		ComputeOutputOrigin:      true,
		PassDirectionToOutput:    true,
		ComputeOutputExtent:      true,
		OutputDimensionality:     3,
		InterpolationMode:        ModeNearest,
		BorderMode:               interpolate.BorderClamp,
		BorderThickness:          0.5,
		SlabNumberOfSlices:       1,
		SlabMode:                 convert.SlabMean,
		SlabSliceSpacingFraction: 1.0,
		ScalarShift:              0,
		ScalarScale:              1,
		TransformInputSampling:   true,
		Optimization:             true,
	}
}

// Validate reports parameter errors at set time (spec.md §7).
func (p Params) Validate() error {
	if p.SlabNumberOfSlices < 1 {
		return fmt.Errorf("reslice: slab_number_of_slices must be >= 1, got %d", p.SlabNumberOfSlices)
	}
	if p.SlabSliceSpacingFraction <= 0 || p.SlabSliceSpacingFraction > 1 {
		return fmt.Errorf("reslice: slab_slice_spacing_fraction must be in (0,1], got %v", p.SlabSliceSpacingFraction)
	}
	if p.OutputDimensionality < 1 || p.OutputDimensionality > 3 {
		return fmt.Errorf("reslice: output_dimensionality must be 1,2,3, got %d", p.OutputDimensionality)
	}
	if p.OutputScalarTypeSet && !p.OutputScalarType.Valid() {
		return fmt.Errorf("reslice: invalid output_scalar_type %d", int(p.OutputScalarType))
	}
	return nil
}

// Engine is the top-level resampling filter (spec.md §9's
// "top-level filter state").
type Engine struct {
	Params Params

	// Warnf reports non-fatal conditions of a pass: the downgrade from 3D
	// to 2D tile splitting when an output stencil is generated, and
	// per-tile stencil insertion errors. Defaults to wrapping log.Printf;
	// callers embedding the engine in a larger pipeline can redirect it.
	Warnf func(format string, args ...any)

	lastTransformModTime time.Time
	passSeq              int
}

// NewEngine builds an Engine with the given parameters, after validating
// them.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.NumWorkers < 1 {
		p.NumWorkers = 4
	}
	return &Engine{Params: p, Warnf: log.Printf}, nil
}

// ModTime returns the engine's pass counter, which ExecutePass increments
// once per call. It does not reflect changes to Params, the reslice
// transform, the reslice axes, the interpolator or the information input.
func (e *Engine) ModTime() int {
	return e.passSeq
}

// resolveInterpolator returns the configured Interpolator, or a built-in
// one matching InterpolationMode.
func (e *Engine) resolveInterpolator() interpolate.Interpolator {
	if e.Params.Interpolator != nil {
		return e.Params.Interpolator
	}
	switch e.Params.InterpolationMode {
	case ModeLinear:
		return interpolate.NewLinear()
	case ModeCubic:
		return interpolate.NewCubic()
	default:
		return interpolate.NewNearest()
	}
}

// shouldDowngradeToNearest implements spec.md §4.4's nearest-safe
// downgrade (S5): when the composed index matrix lands every output
// voxel exactly on an input index, linear/cubic interpolation collapses
// to a single full-weight tap, so the engine may swap in the plain
// Nearest interpolator without changing a single output value. Only
// applies to the built-in mode selection — a caller-supplied
// Params.Interpolator is used as given, since the engine cannot know
// whether a custom interpolator's behavior reduces the same way.
func shouldDowngradeToNearest(p Params, im *indexMatrix) bool {
	return p.Interpolator == nil && im.IsNearestSafe && p.InterpolationMode != ModeNearest
}

// ExecutePass derives the output geometry, builds the index matrix,
// allocates the output grid, and drives tiled execution — spec.md §9's
// `begin_pass` / `execute_tile` / `end_pass` lifted into one call.
func (e *Engine) ExecutePass(input *voxel.Grid) (*voxel.Grid, *stencil.RunStencil, error) {
	p := e.Params
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	inputInfo := input.GridInfo
	if p.InformationInput != nil {
		inputInfo = *p.InformationInput
	}

	gp := geometry.Params{
		ResliceAxes:            p.ResliceAxes,
		OutputSpacing:          p.OutputSpacing,
		ComputeOutputSpacing:   p.ComputeOutputSpacing,
		OutputOrigin:           p.OutputOrigin,
		ComputeOutputOrigin:    p.ComputeOutputOrigin,
		OutputDirection:        p.OutputDirection,
		PassDirectionToOutput:  p.PassDirectionToOutput,
		OutputExtent:           p.OutputExtent,
		ComputeOutputExtent:    p.ComputeOutputExtent,
		OutputDimensionality:   p.OutputDimensionality,
		AutoCropOutput:         p.AutoCropOutput,
		TransformInputSampling: p.TransformInputSampling,
	}
	outputInfo := geometry.DeriveOutputInfo(inputInfo, gp)

	outKind := input.Kind
	if p.OutputScalarTypeSet {
		outKind = p.OutputScalarType
	}

	output, err := voxel.NewGrid(outputInfo, outKind, input.NumComponents)
	if err != nil {
		return nil, nil, err
	}

	im, err := buildIndexMatrix(inputInfo, outputInfo, p)
	if err != nil {
		return nil, nil, err
	}

	interp := e.resolveInterpolator()
	if shouldDowngradeToNearest(p, im) {
		interp = interpolate.NewNearest()
	}
	if p.Interpolator == nil {
		interp.SetComponentOffset(0, input.NumComponents)
	}
	interp.SetBorderMode(p.BorderMode)
	interp.SetTolerance(p.BorderThickness)

	slab := convert.SlabState{
		NumSamples:      p.SlabNumberOfSlices,
		SpacingFraction: p.SlabSliceSpacingFraction,
		Mode:            p.SlabMode,
		Trapezoid:       p.SlabTrapezoidIntegration,
	}
	if err := slab.Validate(); err != nil {
		return nil, nil, err
	}

	rescale := convert.Rescale{Shift: p.ScalarShift, Scale: p.ScalarScale}
	clamp := convert.ShouldClamp(p.InterpolationMode != ModeCubic, p.SlabMode == convert.SlabSum, input.Kind, outKind)
	conv := convert.NewConverter(outKind, clamp)
	bg := convert.NewBackgroundPixel(outKind, input.NumComponents, p.BackgroundColor)

	support := [3]int{1, 1, 1}
	sx, sy, sz := interp.ComputeSupportSize(flatten(im.Full))
	support = [3]int{sx, sy, sz}

	updateExtent, hit := geometry.ComputeUpdateExtent(
		inputInfo.Extent, outputInfo.Extent, im.Full, support, geometry.BorderMode(p.BorderMode), im.HasResidual)
	_ = updateExtent

	var outStencil *stencil.RunStencil
	if p.GenerateStencilOutput {
		outStencil = stencil.NewRunStencil()
	}

	e.passSeq++

	tp := tileParams{
		engine:       e,
		input:        input,
		output:       output,
		im:           im,
		interp:       interp,
		slab:         slab,
		rescale:      rescale,
		conv:         conv,
		background:   bg,
		inStencil:    p.InputStencil,
		outStencil:   outStencil,
		hitWhole:     hit,
		optimization: p.Optimization,
	}
	if err := driveTiles(tp); err != nil {
		return nil, nil, err
	}

	return output, outStencil, nil
}

func flatten(m matrix.Mat4) [9]float64 {
	u := m.Upper3()
	return [9]float64{u[0][0], u[0][1], u[0][2], u[1][0], u[1][1], u[1][2], u[2][0], u[2][1], u[2][2]}
}
