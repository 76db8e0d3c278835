// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordRankRequest tests ranking request metric recording
func TestRecordRankRequest(t *testing.T) {
	tests := []struct {
		name       string
		outcome    string
		candidates int
		duration   time.Duration
	}{
		{name: "normal request", outcome: "ok", candidates: 50, duration: 12 * time.Millisecond},
		{name: "empty request", outcome: "empty", candidates: 0, duration: 10 * time.Microsecond},
		{name: "degraded request", outcome: "degraded", candidates: 200, duration: 90 * time.Millisecond},
		{name: "canceled request", outcome: "canceled", candidates: 10, duration: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RankRequests.WithLabelValues(tt.outcome))
			RecordRankRequest(tt.outcome, tt.candidates, tt.duration)
			after := testutil.ToFloat64(RankRequests.WithLabelValues(tt.outcome))
			if after-before != 1 {
				t.Errorf("ranking_requests_total{outcome=%q} delta = %f, want 1", tt.outcome, after-before)
			}
		})
	}
}

func TestRecordSignalFallback(t *testing.T) {
	before := testutil.ToFloat64(SignalFallbacks.WithLabelValues("bandit", "timeout"))
	RecordSignalFallback("bandit", "timeout")
	RecordSignalFallback("bandit", "timeout")
	after := testutil.ToFloat64(SignalFallbacks.WithLabelValues("bandit", "timeout"))
	if after-before != 2 {
		t.Errorf("fallback delta = %f, want 2", after-before)
	}
}

func TestRecordFeedback(t *testing.T) {
	before := testutil.ToFloat64(FeedbackEvents.WithLabelValues("purchase", "applied"))
	RecordFeedback("purchase", "applied")
	if got := testutil.ToFloat64(FeedbackEvents.WithLabelValues("purchase", "applied")) - before; got != 1 {
		t.Errorf("feedback delta = %f, want 1", got)
	}
}

func TestRecordBanditUpdate(t *testing.T) {
	before := testutil.ToFloat64(BanditUpdateErrors.WithLabelValues("memory"))
	RecordBanditUpdate("memory", time.Microsecond, nil)
	RecordBanditUpdate("memory", time.Microsecond, errors.New("closed"))
	if got := testutil.ToFloat64(BanditUpdateErrors.WithLabelValues("memory")) - before; got != 1 {
		t.Errorf("bandit update errors delta = %f, want 1", got)
	}
}

func TestUpdateBanditGauges(t *testing.T) {
	UpdateBanditGauges(42, 0.37)
	if got := testutil.ToFloat64(BanditTrackedItems); got != 42 {
		t.Errorf("bandit_tracked_items = %f, want 42", got)
	}
	if got := testutil.ToFloat64(BanditMeanConversion); got != 0.37 {
		t.Errorf("bandit_mean_conversion_rate = %f, want 0.37", got)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("peers"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("peers"))

	RecordCacheAccess("peers", true)
	RecordCacheAccess("peers", false)
	RecordCacheAccess("peers", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("peers")) - hits; got != 1 {
		t.Errorf("hits delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("peers")) - misses; got != 2 {
		t.Errorf("misses delta = %f, want 2", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("similar_users"))
	RecordDBQuery("similar_users", 5*time.Millisecond, nil)
	RecordDBQuery("similar_users", 5*time.Millisecond, errors.New("connection refused"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("similar_users")) - before; got != 1 {
		t.Errorf("db errors delta = %f, want 1", got)
	}
}

func TestNATSMetrics(t *testing.T) {
	consumed := testutil.ToFloat64(NATSMessagesConsumed)
	failed := testutil.ToFloat64(NATSMessagesParseFailed)

	RecordNATSConsume()
	RecordNATSParseFailed()
	RecordNATSProcessingDuration(3 * time.Millisecond)

	if got := testutil.ToFloat64(NATSMessagesConsumed) - consumed; got != 1 {
		t.Errorf("consumed delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(NATSMessagesParseFailed) - failed; got != 1 {
		t.Errorf("parse failed delta = %f, want 1", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordRankRequest("ok", j, time.Duration(j)*time.Millisecond)
				RecordFeedback("click", "applied")
				RecordBanditUpdate("memory", time.Microsecond, nil)
			}
		}()
	}
	wg.Wait()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/rank", "200"))
	RecordAPIRequest("POST", "/api/v1/rank", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/rank", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got < 1 {
		t.Errorf("api_active_requests = %v, want >= 1", got)
	}
	TrackActiveRequest(false)
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		RankRequests,
		RankDuration,
		RankCandidates,
		SignalFallbacks,
		DiversitySubstitutions,
		AlternativesFound,
		FeedbackEvents,
		FeedbackRecordErrors,
		BanditUpdateDuration,
		BanditUpdateErrors,
		BanditTrackedItems,
		BanditMeanConversion,
		CacheHits,
		CacheMisses,
		CacheEvictions,
		DBQueryDuration,
		DBQueryErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		NATSMessagesConsumed,
		NATSMessagesParseFailed,
		NATSProcessingDuration,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		AppInfo,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordRankRequest("ok", 10, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordRankRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRankRequest("ok", 50, 10*time.Millisecond)
	}
}
