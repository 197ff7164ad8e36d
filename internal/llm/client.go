package llm

import (
	"context"
	"time"
)

// Attachment is binary content sent alongside a prompt, such as a call
// recording.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call to the model. Kind labels the call
// for metrics only.
type Request struct {
	Kind        string
	Model       string
	Prompt      string
	Attachment  *Attachment
	Temperature float64
	MaxTokens   int
}

// Call kinds used for metrics labels.
const (
	KindScenario     = "scenario"
	KindEvaluation   = "evaluation"
	KindCallAnalysis = "call_analysis"
	KindTonePolish   = "tone_polish"
)

// Generator produces text from a prompt. Implementations must honor
// context cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Recorder receives timing and outcome data for each model call. The
// metrics layer satisfies this.
type Recorder interface {
	RecordModelCall(kind string, err error, duration time.Duration)
}
