// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
)

// TransactionMiddleware runs mutating requests inside one transaction. The transaction is
// rolled back when the handler answers with a status >= 400. The response is held back
// until the commit and a failed commit reaches the client as a 500.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			rw := newBufferedResponse(w)

			err := db.WithTx(r.Context(), func(txCtx context.Context) error {
				next.ServeHTTP(rw, r.WithContext(txCtx))

				if rw.status >= http.StatusBadRequest {
					return fmt.Errorf("request failed with status %d", rw.status)
				}
				return nil
			})

			if err != nil && rw.status < http.StatusBadRequest {
				logger.Errorf("transaction of %s %s not committed: %v", r.Method, r.URL.Path, err)
				rw.discard()
				httptypes.WriteError(w, err, logger)
				return
			}

			if err != nil {
				logger.Debugf("transaction rolled back: %v", err)
			}

			rw.flush()
		})
	}
}

// bufferedResponse shares the header map of the real writer and holds status and body back.
type bufferedResponse struct {
	w      http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newBufferedResponse(w http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{w: w, status: http.StatusOK}
}

func (rw *bufferedResponse) Header() http.Header {
	return rw.w.Header()
}

func (rw *bufferedResponse) WriteHeader(code int) {
	rw.status = code
}

func (rw *bufferedResponse) Write(b []byte) (int, error) {
	return rw.body.Write(b)
}

func (rw *bufferedResponse) discard() {
	rw.body.Reset()
	rw.w.Header().Del("Content-Length")
}

func (rw *bufferedResponse) flush() {
	rw.w.WriteHeader(rw.status)
	_, _ = rw.w.Write(rw.body.Bytes())
}
