package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formcli_http_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "status"})

	analysisRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formcli_analysis_runs_total",
		Help: "Analysis runs executed, by outcome.",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formcli_analysis_duration_seconds",
		Help:    "Wall time of one analysis run.",
		Buckets: prometheus.DefBuckets,
	})
)
