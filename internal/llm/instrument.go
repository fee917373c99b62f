package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/careerprep/internal/metrics"
)

// InstrumentedProvider is a decorator that bounds every call with a timeout,
// logs it and records Prometheus metrics by purpose.
type InstrumentedProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithInstrumentation wraps a Provider with timeout, logging and metrics.
func WithInstrumentation(p Provider, timeout time.Duration) Provider {
	return &InstrumentedProvider{inner: p, timeout: timeout}
}

func (i *InstrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := i.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	metrics.LLMDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues(purpose, "error").Inc()
		slog.Warn("LLM request failed",
			"purpose", purpose,
			"model", i.inner.ModelID(),
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	metrics.LLMRequests.WithLabelValues(purpose, "ok").Inc()
	slog.Debug("LLM request completed",
		"purpose", purpose,
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
		"duration", elapsed,
	)
	return resp, nil
}

func (i *InstrumentedProvider) ModelID() string {
	return i.inner.ModelID()
}
