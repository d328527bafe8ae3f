package build

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of compiling one source file.
type Outcome struct {
	Source string
	Output string
	Size   int
	Err    error
}

// Success reports whether the artifact was written.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Report describes one full batch over every matched directory.
type Report struct {
	BatchID     string
	Trigger     string
	Started     time.Time
	Duration    time.Duration
	Directories int
	Outcomes    []Outcome
	// Err is set when the batch was abandoned before compiling anything.
	Err error
}

func newReport(trigger string) Report {
	return Report{
		BatchID: uuid.NewString(),
		Trigger: trigger,
		Started: time.Now(),
	}
}

// Written returns the artifact paths produced by the batch.
func (r Report) Written() []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.Success() {
			paths = append(paths, o.Output)
		}
	}
	return paths
}

// Failed counts the files that produced no artifact.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Success() {
			n++
		}
	}
	return n
}

// Bytes sums the size of every written artifact.
func (r Report) Bytes() uint64 {
	var total uint64
	for _, o := range r.Outcomes {
		if o.Success() {
			total += uint64(o.Size)
		}
	}
	return total
}
