// Package domain defines the core types for the autofix engine.
package domain

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// FindingType identifies the kind of observation a producer emitted.
type FindingType string

const (
	FindingMissingStateObject FindingType = "missing_state_object"
	FindingMissingBinding     FindingType = "missing_binding"
	FindingMissingImport      FindingType = "missing_import"
	FindingHighComplexity     FindingType = "high_complexity"
	FindingDeadCode           FindingType = "dead_code"
	FindingNamingViolation    FindingType = "naming_violation"
)

// Context keys used by producers to carry transform parameters.
const (
	CtxProperty  = "property"
	CtxType      = "type"
	CtxFunction  = "function"
	CtxModule    = "module"
	CtxMetric    = "metric"
	CtxValue     = "value"
	CtxThreshold = "threshold"
)

// Metric names recognized on high_complexity findings.
const (
	MetricFunctionLines        = "functionLines"
	MetricCyclomaticComplexity = "cyclomaticComplexity"
	MetricNestingDepth         = "nestingDepth"
	MetricParameterCount       = "parameterCount"
	MetricFileLines            = "fileLines"
)

// Finding is an observation about a source location, produced by an
// external analyzer. Immutable once produced.
type Finding struct {
	ID       string
	Type     FindingType
	File     string
	Line     int
	Severity Severity
	Context  map[string]string
	Message  string
}

// IntentCategory groups intents for approval-policy purposes.
type IntentCategory string

const (
	CategoryDocumentation IntentCategory = "documentation"
	CategoryQuality       IntentCategory = "quality"
	CategoryDataFlow      IntentCategory = "dataFlow"
	CategoryStructural    IntentCategory = "structural"
	CategoryArchitecture  IntentCategory = "architecture"
)

// IntentKind discriminates the supported mutations.
type IntentKind string

const (
	IntentAddStateObject   IntentKind = "add_state_object"
	IntentAddBinding       IntentKind = "add_binding"
	IntentAddImport        IntentKind = "add_import"
	IntentExtractFunction  IntentKind = "extract_function"
	IntentReduceNesting    IntentKind = "reduce_nesting"
	IntentReduceParameters IntentKind = "reduce_parameters"
	IntentSplitFile        IntentKind = "split_file"
)

// TaskIntent is a closed tagged union over the supported mutations.
// Only the fields relevant to Kind are populated.
type TaskIntent struct {
	Kind     IntentKind
	Property string
	TypeName string
	Function string
	Module   string
	File     string
	Path     string
	Line     int
}

// intentCategories maps each intent kind to exactly one category.
var intentCategories = map[IntentKind]IntentCategory{
	IntentAddStateObject:   CategoryDataFlow,
	IntentAddBinding:       CategoryDataFlow,
	IntentAddImport:        CategoryQuality,
	IntentExtractFunction:  CategoryQuality,
	IntentReduceNesting:    CategoryQuality,
	IntentReduceParameters: CategoryQuality,
	IntentSplitFile:        CategoryStructural,
}

// Category returns the intent's category.
func (i TaskIntent) Category() IntentCategory {
	return intentCategories[i.Kind]
}

// TaskScope describes how many files a task touches.
type TaskScope string

const (
	ScopeSingleFile TaskScope = "single_file"
	ScopeMultiFile  TaskScope = "multi_file"
)

// TaskStatus is the lifecycle state of an AgentTask.
type TaskStatus string

const (
	StatusProposed        TaskStatus = "proposed"
	StatusApproved        TaskStatus = "approved"
	StatusRejected        TaskStatus = "rejected"
	StatusExecutedSuccess TaskStatus = "executed_success"
	StatusExecutedFailure TaskStatus = "executed_failure"
)

// AgentTask is a proposed unit of work wrapping one intent.
// Created only by the generator; status mutated only by the host.
type AgentTask struct {
	ID               string
	Title            string
	Intent           TaskIntent
	Scope            TaskScope
	Status           TaskStatus
	Confidence       float64
	SourceFindings   []string
	Steps            []string
	RequiresApproval bool
}

// Decision is the outcome of evaluating a task for approval.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionModified Decision = "modified"
	DecisionDeferred Decision = "deferred"
)

// TaskApprovalResult is a pure decision value for one task.
type TaskApprovalResult struct {
	Task     *AgentTask
	Decision Decision
	Reason   string
}

// IsApproved reports whether the task may proceed to execution.
func (r TaskApprovalResult) IsApproved() bool {
	return r.Decision == DecisionApproved || r.Decision == DecisionModified
}

// TransformContext carries parameters a transform needs beyond the intent.
type TransformContext struct {
	FilePath     string
	PropertyName string
	TypeName     string
	FunctionName string
	Module       string
	Line         int
}

// TransformResult is the outcome of one transform application.
// Invariant: if Success is false, TransformedSource equals OriginalSource.
type TransformResult struct {
	OriginalSource    string
	TransformedSource string
	Diff              string
	LinesChanged      int
	Warnings          []string
	Success           bool
}

// HasChanges reports whether the transform modified the source.
func (r *TransformResult) HasChanges() bool {
	return r.Success && r.TransformedSource != r.OriginalSource
}

// HostRunResult aggregates the outcome of one host invocation.
type HostRunResult struct {
	Findings       []Finding
	Tasks          []*AgentTask
	TasksProposed  int
	TasksProcessed int
	TasksSucceeded int
	Decisions      map[string]TaskApprovalResult
	Results        map[string]*TransformResult
}

// RunOutcome summarizes a persisted run.
type RunOutcome string

const (
	OutcomeSuccess RunOutcome = "success"
	OutcomePartial RunOutcome = "partial"
	OutcomeFailed  RunOutcome = "failed"
	OutcomeNoTasks RunOutcome = "no_tasks"
)

// TaskRun is the persisted audit record of one generate-approve-execute cycle.
type TaskRun struct {
	ID          string
	ProjectPath string
	StartedAt   int64
	Outcome     RunOutcome
	ResultsJSON string
}

// AuditEvent records one decision or execution step within a run.
type AuditEvent struct {
	ID         string
	RunID      string
	TaskID     string
	Action     string
	DetailJSON string
	Severity   string
	CreatedAt  int64
}

// TaskGenerationConfig bounds and filters task generation.
type TaskGenerationConfig struct {
	MinimumConfidence float64
	MaxTasksPerRun    int
	EnabledCategories []IntentCategory
}

// CategoryEnabled reports whether the given category passes the filter.
// An empty EnabledCategories list enables every category.
func (c TaskGenerationConfig) CategoryEnabled(cat IntentCategory) bool {
	if len(c.EnabledCategories) == 0 {
		return true
	}
	for _, e := range c.EnabledCategories {
		if e == cat {
			return true
		}
	}
	return false
}
