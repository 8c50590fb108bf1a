package model

// Results accumulates the outcome of a single harness run.
type Results struct {
	Total    int
	Failed   int
	Failures []Failure
}

// Pass counts a passing test.
func (r *Results) Pass() {
	r.Total++
}

// Record counts a failing test and keeps its record.
func (r *Results) Record(f Failure) {
	r.Total++
	r.Failed++
	r.Failures = append(r.Failures, f)
}

// Succeeded returns the number of passing tests.
func (r *Results) Succeeded() int {
	return r.Total - r.Failed
}

// Group names a reporting group and the units it runs, in execution
// order.
type Group struct {
	Name  string
	Units []string
}
