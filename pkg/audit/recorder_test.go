// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_interfaces.go -source=./interfaces.go

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()

	return tracer
}

func TestRecorder_RecordWritesInBackground(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	release := make(chan struct{})

	var written *types.AuditRecord
	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *types.AuditRecord) error {
			<-release
			written = r
			return nil
		},
	)

	r := NewRecorder(mockStorage, time.Second, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	done := make(chan struct{})
	go func() {
		r.Record(context.Background(), "principal-1", "tenant-1", "client.create", "client", "client-1", map[string]any{"name": "Acme"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on the storage write")
	}

	close(release)
	r.Wait()

	if written == nil {
		t.Fatal("expected the record to be written")
	}

	if written.ID == "" {
		t.Error("expected a generated record ID")
	}

	if written.ActorID != "principal-1" || written.TenantID != "tenant-1" || written.Action != "client.create" {
		t.Errorf("unexpected record %+v", written)
	}

	if written.ResourceType != "client" || written.ResourceID != "client-1" {
		t.Errorf("unexpected resource %s/%s", written.ResourceType, written.ResourceID)
	}

	if written.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %s", written.CreatedAt.Location())
	}
}

func TestRecorder_RecordOutlivesTheRequestContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *types.AuditRecord) error {
			if ctx.Err() != nil {
				t.Errorf("write context already done: %v", ctx.Err())
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected the write to be bounded by a deadline")
			}
			return nil
		},
	)

	r := NewRecorder(mockStorage, time.Second, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.Record(ctx, "principal-1", "tenant-1", "auth.login", "principal", "principal-1", nil)
	r.Wait()
}

func TestRecorder_FailureIsLoggedAndSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	mockLogger.EXPECT().Errorw("audit write failed", gomock.Any()).Times(1)
	mockMonitor.EXPECT().IncAuditFailureCounter(map[string]string{"action": "tenant.create"}).Return(nil)

	r := NewRecorder(mockStorage, 0, passthroughTracer(ctrl), mockMonitor, mockLogger)

	r.Record(context.Background(), "admin", "tenant-1", "tenant.create", "tenant", "tenant-1", nil)
	r.Wait()

	if r.timeout != defaultWriteTimeout {
		t.Errorf("expected default timeout, got %s", r.timeout)
	}
}
