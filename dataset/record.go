package dataset

// Record is one raw observation: numeric fields and categorical fields by
// name. Records are ephemeral; they exist for the duration of a single
// request or a single training row.
type Record struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// Frame converts the record into a single-row frame. Numeric fields are
// added in the order given by numericOrder and categorical fields in the
// order given by categoricalOrder, so that repeated conversions of the same
// schema yield identical column layouts. Fields absent from the record are
// skipped; the preprocessing transform fills them from the bundle defaults.
func (r *Record) Frame(numericOrder, categoricalOrder []string) *Frame {
	f := NewFrame()
	for _, name := range numericOrder {
		if v, ok := r.Numeric[name]; ok {
			f.AddNumeric(name, []float64{v})
		}
	}
	for _, name := range categoricalOrder {
		if v, ok := r.Categorical[name]; ok {
			f.AddCategorical(name, []string{v})
		}
	}
	return f
}
