package llm

import (
	"context"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name: "test-evaluation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":     map[string]any{"type": "number"},
			"strengths": StringArray(),
		},
		"required": []string{"score", "strengths"},
	},
}

type testEvaluation struct {
	Score     float64  `json:"score"`
	Strengths []string `json:"strengths"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantScore float64
	}{
		{"plain", `{"score": 80, "strengths": ["clear"]}`, 80},
		{"fenced", "```json\n{\"score\": 75, \"strengths\": []}\n```", 75},
		{"bare fence", "```\n{\"score\": 60, \"strengths\": [\"a\"]}\n```", 60},
		{"surrounding prose", `Here you go: {"score": 90, "strengths": ["x"]} hope that helps`, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out testEvaluation
			if err := DecodeJSON(tt.raw, testSchema, &out); err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if out.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", out.Score, tt.wantScore)
			}
		})
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no object", "I cannot answer that"},
		{"invalid json", `{"score": 80, "strengths": [}`},
		{"missing required field", `{"score": 80}`},
		{"wrong type", `{"score": "high", "strengths": []}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out testEvaluation
			err := DecodeJSON(tt.raw, testSchema, &out)
			var malformed *ErrMalformedOutput
			if !errors.As(err, &malformed) {
				t.Fatalf("DecodeJSON() error = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestDecodeJSONWithoutSchema(t *testing.T) {
	var out map[string]any
	if err := DecodeJSON(`{"anything": true}`, nil, &out); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if out["anything"] != true {
		t.Errorf("out = %v", out)
	}
}

func TestGenerateJSONSetsJSONMode(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{"score": 50, "strengths": []}`})

	var out testEvaluation
	if err := GenerateJSON(context.Background(), mock, UserPrompt("sys", "prompt"), testSchema, &out); err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}

	call, ok := mock.LastCall()
	if !ok {
		t.Fatal("expected a recorded call")
	}
	if !call.JSON {
		t.Error("expected JSON mode to be requested")
	}
	if out.Score != 50 {
		t.Errorf("Score = %v, want 50", out.Score)
	}
}

func TestGenerateJSONPropagatesProviderError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	var out testEvaluation
	err := GenerateJSON(context.Background(), mock, UserPrompt("", "p"), testSchema, &out)
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want ErrRateLimit", err)
	}
}

func TestGenerateTextEmptyReply(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "   "})

	_, err := GenerateText(context.Background(), mock, UserPrompt("", "p"))
	var malformed *ErrMalformedOutput
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedOutput", err)
	}
}

func TestMockProviderExhausted(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount() = %d, want 1", mock.CallCount())
	}
}
