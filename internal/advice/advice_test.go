package advice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/genai"
)

type fakeMessages struct {
	msg    *anthropic.Message
	err    error
	params anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = body
	return f.msg, f.err
}

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func TestResultOk(t *testing.T) {
	cases := []struct {
		name string
		res  Result
		want bool
	}{
		{"text", Result{Text: "spend less"}, true},
		{"blank text", Result{Text: "  \n"}, false},
		{"error", Result{Text: "x", Err: ErrProvider}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.res.Ok(); got != tc.want {
				t.Fatalf("Ok() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	res := Disabled{}.Recommend(context.Background(), "anything")
	if !errors.Is(res.Err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", res.Err)
	}
}

func TestAnthropicRecommend(t *testing.T) {
	fake := &fakeMessages{msg: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "Keep it up. "},
		{Type: "text", Text: "Save 10%."},
	}}}
	a := &Anthropic{messages: fake, model: DefaultAnthropicModel}

	res := a.Recommend(context.Background(), "Monthly income: 100.00")
	if !res.Ok() || res.Text != "Keep it up. Save 10%." {
		t.Fatalf("unexpected result %+v", res)
	}
	if fake.params.MaxTokens != DefaultMaxTokens {
		t.Fatalf("max tokens = %d", fake.params.MaxTokens)
	}
	if len(fake.params.System) != 1 || fake.params.System[0].Text != SystemPrompt {
		t.Fatalf("system prompt not sent")
	}
}

func TestAnthropicFailures(t *testing.T) {
	cases := []struct {
		name string
		fake *fakeMessages
	}{
		{"transport error", &fakeMessages{err: errors.New("connection reset")}},
		{"empty content", &fakeMessages{msg: &anthropic.Message{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := (&Anthropic{messages: tc.fake}).Recommend(context.Background(), "p")
			if res.Ok() || !errors.Is(res.Err, ErrProvider) {
				t.Fatalf("expected provider error, got %+v", res)
			}
		})
	}
}

func TestGeminiRecommend(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []*genai.Part{{Text: "Cut restaurant spending."}}}},
	}}}
	g := &Gemini{models: fake, model: DefaultGeminiModel}

	res := g.Recommend(context.Background(), "Days remaining: 10")
	if !res.Ok() || res.Text != "Cut restaurant spending." {
		t.Fatalf("unexpected result %+v", res)
	}
	if fake.model != DefaultGeminiModel {
		t.Fatalf("model = %s", fake.model)
	}
	if !strings.Contains(fake.contents[0].Parts[0].Text, "Days remaining: 10") {
		t.Fatalf("prompt not forwarded")
	}
}

func TestGeminiError(t *testing.T) {
	g := &Gemini{models: &fakeModels{err: context.DeadlineExceeded}}
	res := g.Recommend(context.Background(), "p")
	if !errors.Is(res.Err, ErrProvider) {
		t.Fatalf("expected provider error, got %v", res.Err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	gw, err := New(ctx, Config{Provider: ProviderNone})
	if err != nil || gw.Name() != ProviderNone {
		t.Fatalf("none: %v %v", gw, err)
	}
	gw, err = New(ctx, Config{Provider: ProviderAnthropic, AnthropicAPIKey: "k"})
	if err != nil || gw.Name() != ProviderAnthropic {
		t.Fatalf("anthropic: %v %v", gw, err)
	}
	if _, err := New(ctx, Config{Provider: ProviderAnthropic}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := New(ctx, Config{Provider: "groq"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}
