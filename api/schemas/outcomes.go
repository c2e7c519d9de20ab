package schemas

import "time"

// ProbeOutcome is the result of one readiness probe or poll invocation.
// Produced once per invocation and never mutated after return.
type ProbeOutcome struct {
	Succeeded bool          `json:"succeeded"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
	// LastError holds the error from the final failed attempt, if any.
	LastError error `json:"-"`
	// LastObserved is a textual rendering of the final observed value,
	// filled by pollers so exhaustion never reports a bare boolean.
	LastObserved string `json:"last_observed,omitempty"`
}

// ActionOutcome is the result of executing one logical action under the
// reset-and-retry policy.
type ActionOutcome struct {
	Succeeded    bool          `json:"succeeded"`
	AttemptsUsed int           `json:"attempts_used"`
	// Recovered is true iff at least one attempt required an environment
	// reset before the action eventually succeeded or gave up.
	Recovered     bool          `json:"recovered"`
	Elapsed       time.Duration `json:"elapsed"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// StepStatus classifies how a journey step ended.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	// StepSoftFailed marks a tolerated failure: logged, journey continued.
	StepSoftFailed StepStatus = "soft-failed"
	// StepSkipped marks steps never reached because a hard step aborted.
	StepSkipped StepStatus = "skipped"
)

// StepOutcome records one executed (or skipped) journey step.
type StepOutcome struct {
	Name    string        `json:"name"`
	Status  StepStatus    `json:"status"`
	Elapsed time.Duration `json:"elapsed"`
	Reason  string        `json:"reason,omitempty"`
}

// JourneyReport is the operator-visible summary of one journey run,
// serialized by the run command.
type JourneyReport struct {
	RunID      string        `json:"run_id"`
	Journey    string        `json:"journey"`
	Target     string        `json:"target"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed"`
	Succeeded  bool          `json:"succeeded"`
	Steps      []StepOutcome `json:"steps"`
}
