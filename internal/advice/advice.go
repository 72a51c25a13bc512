// Package advice asks a language model for a short budget recommendation.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// SystemPrompt frames every request.
const SystemPrompt = "You are a personal finance advisor for students and young professionals. " +
	"Give concise, actionable budget advice in 2-3 paragraphs. " +
	"Be specific with numbers and percentages. Be encouraging but honest."

const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

var (
	// ErrProvider wraps every failure of a remote model: transport, timeout,
	// a bad response or an empty answer.
	ErrProvider = errors.New("advice provider error")
	// ErrUnavailable is returned when no provider is configured.
	ErrUnavailable = errors.New("advice provider unavailable")
)

// Result is the outcome of a single advice request.
type Result struct {
	Text string
	Err  error
}

// Ok reports whether the result carries usable advice.
func (r Result) Ok() bool {
	return r.Err == nil && strings.TrimSpace(r.Text) != ""
}

func ok(text string) Result {
	return Result{Text: strings.TrimSpace(text)}
}

func failed(provider string, err error) Result {
	return Result{Err: fmt.Errorf("%w: %s: %v", ErrProvider, provider, err)}
}

// Gateway is the advice collaborator. Implementations make exactly one
// attempt and honour ctx cancellation.
type Gateway interface {
	Recommend(ctx context.Context, prompt string) Result
	Name() string
}

// Disabled never produces advice, so callers always use their fallback.
type Disabled struct{}

func (Disabled) Recommend(context.Context, string) Result {
	return Result{Err: ErrUnavailable}
}

func (Disabled) Name() string { return ProviderNone }

// Func adapts a plain function to Gateway. Handy for tests and wiring.
type Func func(ctx context.Context, prompt string) Result

func (f Func) Recommend(ctx context.Context, prompt string) Result { return f(ctx, prompt) }

func (Func) Name() string { return "func" }
