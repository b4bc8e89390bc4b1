// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// readinessCheckTimeout bounds each dependency ping.
const readinessCheckTimeout = 2 * time.Second

// HealthDependencies are the pings behind /ready. A nil check is skipped.
type HealthDependencies struct {
	CheckDatabase func(context.Context) error
	CheckCache    func(context.Context) error
}

type healthHandler struct {
	checks []namedCheck
	logger *slog.Logger
}

type namedCheck struct {
	name  string
	check func(context.Context) error
}

type checkResult struct {
	Name      string `json:"name"`
	IsOK      bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// NewHealthHandlers returns the /health and /ready handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{logger: logger}
	for _, candidate := range []namedCheck{
		{"postgres", deps.CheckDatabase},
		{"redis", deps.CheckCache},
	} {
		if candidate.check != nil {
			handler.checks = append(handler.checks, candidate)
		}
	}
	return handler.liveness, handler.readiness
}

// liveness answers 200 while the process can serve at all.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness pings every dependency concurrently. Any failure turns the
// answer into 503 "degraded" with the per-dependency results.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	context := request.Context()

	results := make([]checkResult, len(handler.checks))
	var group sync.WaitGroup
	for index, dependency := range handler.checks {
		group.Add(1)
		go func() {
			defer group.Done()
			results[index] = handler.run(context, dependency)
		}()
	}
	group.Wait()

	status, httpStatus := "ready", http.StatusOK
	for _, result := range results {
		if !result.IsOK {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	}})
}

func (handler *healthHandler) run(parent context.Context, dependency namedCheck) checkResult {
	checkCtx, cancel := context.WithTimeout(parent, readinessCheckTimeout)
	defer cancel()

	started := time.Now()
	err := dependency.check(checkCtx)
	result := checkResult{
		Name:      dependency.name,
		IsOK:      err == nil,
		LatencyMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
		handler.logger.ErrorContext(parent, "readiness_check_failed",
			slog.String("dependency", dependency.name),
			slog.Any("error", err),
		)
	}
	return result
}
