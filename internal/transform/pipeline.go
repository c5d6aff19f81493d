package transform

import (
	"github.com/sourcefix/autofix/internal/domain"
)

// Step is one intent to apply within a pipeline pass.
type Step struct {
	Intent  domain.TaskIntent
	Context domain.TransformContext
}

// StepResult pairs a successfully applied step with its transform result.
type StepResult struct {
	Intent domain.TaskIntent
	Result *domain.TransformResult
}

// StepFailure records the first failing step.
type StepFailure struct {
	Intent domain.TaskIntent
	Err    error
}

// PipelineResult is the outcome of one pipeline pass over one buffer.
// When Success is false, FinalSource equals the original input: the steps
// applied before the failure are reported with their diffs but their output
// is not surfaced, since later steps may assume state the failed step was
// meant to produce.
type PipelineResult struct {
	Success     bool
	Applied     []StepResult
	Failed      *StepFailure
	FinalSource string
}

// Pipeline applies an ordered list of intents to one source buffer, feeding
// each transform's output into the next. It holds no state between calls.
type Pipeline struct {
	registry *Registry
}

// NewPipeline creates a Pipeline over the given registry.
func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{registry: registry}
}

// Run applies the steps in order, fail-fast: the first transform error
// stops the pass and later steps are not attempted.
func (p *Pipeline) Run(source string, steps []Step) *PipelineResult {
	res := &PipelineResult{FinalSource: source}
	current := source

	for _, step := range steps {
		t, err := p.registry.Resolve(step.Intent.Kind)
		if err != nil {
			res.Failed = &StepFailure{Intent: step.Intent, Err: err}
			res.FinalSource = source
			return res
		}

		tr, err := t.Apply(current, step.Intent, step.Context)
		if err != nil {
			res.Failed = &StepFailure{Intent: step.Intent, Err: err}
			res.FinalSource = source
			return res
		}

		res.Applied = append(res.Applied, StepResult{Intent: step.Intent, Result: tr})
		current = tr.TransformedSource
	}

	res.Success = true
	res.FinalSource = current
	return res
}
