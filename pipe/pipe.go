package pipe

// Op is a single fallible operation. Ops compose into pipelines that stop on the first error.
type Op interface {
	Do() error
}

// OpFunc adapts a plain function into an Op
type OpFunc func() error

// Do implements the Op interface
func (o OpFunc) Do() error {
	return o()
}

// OpFuncs runs a slice of functions in series, stopping at the first error
type OpFuncs []func() error

// Do implements the Op interface
func (ops OpFuncs) Do() error {
	for _, op := range ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}
