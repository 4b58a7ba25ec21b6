// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

const defaultWriteTimeout = 5 * time.Second

var _ RecorderInterface = (*Recorder)(nil)

// Recorder writes audit records in the background. A business operation is
// never failed or delayed by its audit trail.
type Recorder struct {
	storage StorageInterface
	timeout time.Duration

	pending sync.WaitGroup
	now     func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Recorder) Record(ctx context.Context, actorID, tenantID, action, resourceType, resourceID string, detail map[string]any) {
	id, err := uuid.NewV7()
	if err != nil {
		r.fail(action, tenantID, err)
		return
	}

	record := &types.AuditRecord{
		ID:           id.String(),
		ActorID:      actorID,
		TenantID:     tenantID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    r.now().UTC(),
	}

	// The request context is cancelled when the response is sent. Only the trace is carried over.
	spanContext := trace.SpanContextFromContext(ctx)

	// A record made inside a request transaction is written only once that transaction commits.
	db.AfterCommit(ctx, func() { r.write(spanContext, record) })
}

func (r *Recorder) write(spanContext trace.SpanContext, record *types.AuditRecord) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		wctx, cancel := context.WithTimeout(trace.ContextWithSpanContext(context.Background(), spanContext), r.timeout)
		defer cancel()

		wctx, span := r.tracer.Start(wctx, "audit.Recorder.Record")
		defer span.End()

		if err := r.storage.AppendAudit(wctx, record); err != nil {
			r.fail(record.Action, record.TenantID, err)
		}
	}()
}

func (r *Recorder) Wait() {
	r.pending.Wait()
}

func (r *Recorder) fail(action, tenantID string, err error) {
	r.logger.Errorw(
		"audit write failed",
		"error", denial.Wrap(denial.KindAuditWriteFailed, "audit write failed", err).Error(),
		"action", action,
		"tenant_id", tenantID,
	)

	if cerr := r.monitor.IncAuditFailureCounter(map[string]string{"action": action}); cerr != nil {
		r.logger.Debugf("failed to count audit failure: %v", cerr)
	}
}

func NewRecorder(s StorageInterface, timeout time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Recorder {
	r := new(Recorder)

	r.storage = s
	r.timeout = timeout
	if r.timeout <= 0 {
		r.timeout = defaultWriteTimeout
	}
	r.now = time.Now

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
