package softtracer

// SoftTracerBuilderOption is a functional option applied to a soft tracer during construction.
type SoftTracerBuilderOption func(*softTracer)

// WithWorkers sets the number of row workers. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SoftTracerBuilderOption: option function to apply
func WithWorkers(n int) SoftTracerBuilderOption {
	return func(t *softTracer) {
		if n < 1 {
			n = 1
		}
		t.workers = n
	}
}
