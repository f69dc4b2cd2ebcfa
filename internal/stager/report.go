package stager

import "time"

// Outcome is what happened to a single entry
type Outcome int

const (
	Skipped Outcome = iota
	Compressed
	Copied
	Failed
	Pruned
)

func (o Outcome) String() string {
	switch o {
	case Compressed:
		return "compressed"
	case Copied:
		return "copied"
	case Failed:
		return "failed"
	case Pruned:
		return "pruned"
	default:
		return "skipped"
	}
}

// Result records the outcome for one entry
type Result struct {
	Entry

	Outcome Outcome

	// Err is set when Outcome is Failed
	Err error

	// SourceSize and DestSize are in bytes. DestSize is zero for dry runs.
	SourceSize int64
	DestSize   int64
}

// Report is the ordered list of results of one run
type Report struct {
	Results  []Result
	Warnings []string

	Started  time.Time
	Duration time.Duration

	// DryRun is true when nothing was written
	DryRun bool
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Count returns the number of results with the given outcome
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}

	return n
}

// Written returns the number of entries compressed or copied
func (r *Report) Written() int {
	return r.Count(Compressed) + r.Count(Copied)
}

// Failed returns the failed results in order
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == Failed {
			failed = append(failed, res)
		}
	}

	return failed
}
