// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/canonical/practice-service/internal/denial"
	httptypes "github.com/canonical/practice-service/internal/http/types"
)

var healthPrefix = "/" + grpc_health_v1.Health_ServiceDesc.ServiceName + "/"

// GRPCInterceptor verifies the bearer token and tenant of unary calls.
// Health checks are exempt.
func (p *Pipeline) GRPCInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		ctx, span := p.tracer.Start(ctx, "pipeline.Pipeline.GRPCInterceptor")
		defer span.End()

		md, _ := metadata.FromIncomingContext(ctx)
		headers := http.Header{}
		for _, v := range md.Get("authorization") {
			headers.Add("Authorization", v)
		}

		ctx, claims, err := p.admit(ctx, headers)
		if err != nil {
			p.count(err)
			return nil, grpcError(err)
		}

		if !p.limiters.Allow(claims.Subject) {
			p.count(denial.ErrRateLimited)
			return nil, grpcError(denial.ErrRateLimited)
		}

		return handler(ctx, req)
	}
}

func grpcError(err error) error {
	kind, ok := denial.KindOf(err)
	if !ok {
		return status.Error(codes.Internal, "internal error")
	}

	switch httptypes.StatusFor(kind) {
	case http.StatusUnauthorized:
		return status.Error(codes.Unauthenticated, err.Error())
	case http.StatusForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case http.StatusTooManyRequests:
		return status.Error(codes.ResourceExhausted, err.Error())
	}

	return status.Error(codes.Internal, "internal error")
}
