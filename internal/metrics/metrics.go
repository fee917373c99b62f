package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerprep_llm_requests_total",
			Help: "Total number of LLM requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careerprep_llm_request_duration_seconds",
			Help:    "Duration of LLM requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"purpose"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerprep_fallbacks_total",
			Help: "Total number of templated responses served instead of AI output",
		},
		[]string{"kind"},
	)

	InterviewTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerprep_interview_turns_total",
			Help: "Total number of interview turns by result",
		},
		[]string{"result"},
	)

	ResultWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerprep_result_writes_total",
			Help: "Total number of interview result writes by outcome",
		},
		[]string{"outcome"},
	)
)
