package alloy

// Range is an inclusive numeric interval.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// CompositionElements lists the composition features in training order.
// The order is significant: feature vectors handed to the oracle must
// follow it exactly.
var CompositionElements = []string{
	"Al", "Si", "Fe", "Cu", "Mn", "Mg",
	"Cr", "Ni", "Zn", "Ti", "Zr", "Sc", "Other",
}

// AlloyingElements is the subset of composition features whose combined
// content is capped at a practical ceiling.
var AlloyingElements = []string{"Cu", "Mg", "Zn", "Mn", "Si"}

// ProcessingParameters lists the processing features in training order.
var ProcessingParameters = []string{
	"homog_temp_max_C",
	"homog_time_total_s",
	"recryst_temp_max_C",
	"recryst_time_total_s",
	"Cold rolling reduction (percentage)",
	"Hot rolling reduction (percentage)",
}

// CompositionLimits holds the practical per-element limits in wt%.
var CompositionLimits = map[string]Range{
	"Al":    {85.0, 99.5},
	"Si":    {0.0, 1.5},
	"Fe":    {0.0, 0.5},
	"Cu":    {0.0, 5.0},
	"Mn":    {0.0, 1.5},
	"Mg":    {0.0, 6.0},
	"Cr":    {0.0, 0.35},
	"Ni":    {0.0, 0.1},
	"Zn":    {0.0, 8.0},
	"Ti":    {0.0, 0.2},
	"Zr":    {0.0, 0.25},
	"Sc":    {0.0, 0.5},
	"Other": {0.0, 0.15},
}

// ProcessingLimits holds typical processing parameter ranges.
var ProcessingLimits = map[string]Range{
	"homog_temp_max_C":                    {400, 580},
	"homog_time_total_s":                  {3600, 72000},
	"recryst_temp_max_C":                  {300, 550},
	"recryst_time_total_s":                {60, 36000},
	"Cold rolling reduction (percentage)": {0, 90},
	"Hot rolling reduction (percentage)":  {0, 99},
}

// defaultBounds is used for features listed in neither limits table.
var defaultBounds = Range{0, 1}

// FeatureSchema is the ordered list of feature names defining the vector
// layout expected by the oracle. Immutable after construction; the
// name→index map is precomputed so strategies and the validator never
// scan the name list.
type FeatureSchema struct {
	names  []string
	index  map[string]int
	bounds []Range
}

// NewFeatureSchema builds a schema from the given feature names. Bounds
// are resolved once from the limits tables; unknown features default to
// [0,1].
func NewFeatureSchema(names []string) *FeatureSchema {
	s := &FeatureSchema{
		names:  append([]string(nil), names...),
		index:  make(map[string]int, len(names)),
		bounds: make([]Range, len(names)),
	}
	for i, name := range s.names {
		s.index[name] = i
		if r, ok := CompositionLimits[name]; ok {
			s.bounds[i] = r
		} else if r, ok := ProcessingLimits[name]; ok {
			s.bounds[i] = r
		} else {
			s.bounds[i] = defaultBounds
		}
	}
	return s
}

// DefaultSchema returns the full training schema: composition elements
// followed by processing parameters.
func DefaultSchema() *FeatureSchema {
	names := make([]string, 0, len(CompositionElements)+len(ProcessingParameters))
	names = append(names, CompositionElements...)
	names = append(names, ProcessingParameters...)
	return NewFeatureSchema(names)
}

// Len returns the number of features.
func (s *FeatureSchema) Len() int {
	return len(s.names)
}

// Names returns a copy of the ordered feature names.
func (s *FeatureSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Index returns the position of a feature name.
func (s *FeatureSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Bounds returns the per-feature ranges in schema order.
func (s *FeatureSchema) Bounds() []Range {
	return append([]Range(nil), s.bounds...)
}

// Vector builds a feature vector in schema order from named values.
// Missing features default to 0.
func (s *FeatureSchema) Vector(values map[string]float64) []float64 {
	x := make([]float64, len(s.names))
	for i, name := range s.names {
		x[i] = values[name]
	}
	return x
}

// CompositionOf extracts the composition features of a vector as a
// name→value map, skipping processing parameters.
func (s *FeatureSchema) CompositionOf(x []float64) map[string]float64 {
	out := make(map[string]float64, len(CompositionElements))
	for _, elem := range CompositionElements {
		if i, ok := s.index[elem]; ok && i < len(x) {
			out[elem] = x[i]
		}
	}
	return out
}
