package processor

import (
	"github.com/wdm0006/ruleflow/pkg/rules"
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Job is a pipeline execution running on its own goroutine.
type Job struct {
	progress chan int
	done     chan struct{}
	result   *tb.Frame
	err      error
}

// Start runs the pipeline in the background. Progress percentages are sent
// on Progress (which never blocks the run) in addition to any progress
// observer configured on p. There is no cancellation: a caller that no
// longer wants the result simply stops reading.
func (p *Processor) Start(f *tb.Frame, rs rules.Pipeline) *Job {
	j := &Job{
		progress: make(chan int, len(rs)),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(j.done)
		defer close(j.progress)
		j.result, j.err = p.run(f, rs, func(pct int) {
			if p.onProgress != nil {
				p.onProgress(pct)
			}
			j.progress <- pct
		})
	}()
	return j
}

// Progress yields one percentage per completed step and is closed when the
// job finishes.
func (j *Job) Progress() <-chan int { return j.progress }

func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes and returns its outcome.
func (j *Job) Wait() (*tb.Frame, error) {
	<-j.done
	return j.result, j.err
}
