// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/metrics"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", metrics.Outcome(nil))
	assert.Equal(t, "invalid_credentials", metrics.Outcome(apperr.InvalidCredentials("x")))
	assert.Equal(t, "error", metrics.Outcome(errors.New("boom")))
}

func TestObserveAuth(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := metrics.NewWith(registry, registry)

	recorder.ObserveAuth("login", time.Now(), nil)
	recorder.ObserveAuth("login", time.Now(), apperr.InvalidCredentials("x"))
	recorder.ObserveAuth("login", time.Now(), apperr.InvalidCredentials("x"))

	expected := `
# HELP lifequest_auth_events_total Authentication flow executions by outcome
# TYPE lifequest_auth_events_total counter
lifequest_auth_events_total{flow="login",outcome="invalid_credentials"} 2
lifequest_auth_events_total{flow="login",outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "lifequest_auth_events_total"))
}

func TestNilRegistry(t *testing.T) {
	var recorder *metrics.Registry

	assert.NotPanics(t, func() {
		recorder.ObserveAuth("login", time.Now(), nil)
		recorder.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		recorder.AddReapedSessions(3)
	})
	assert.NotNil(t, recorder.Gatherer())
}
