// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultTxTimeout = 30 * time.Second

// ErrCommitFailed reports that the work of fn was lost when the transaction did not commit.
var ErrCommitFailed = errors.New("failed to commit transaction")

type txContextKey struct{}
type lazyTxContextKey struct{}

// lazyTx opens the transaction on first use so read-only handlers never pay for one.
type lazyTx struct {
	db        *sql.DB
	tx        *sql.Tx
	committed bool
	cancel    context.CancelFunc

	afterCommit []func()
}

func (lt *lazyTx) get() (TxInterface, error) {
	if lt.tx != nil {
		return lt.tx, nil
	}

	// The transaction is detached from the request. A client disconnect cannot abort it halfway.
	ctx, cancel := context.WithTimeout(context.Background(), defaultTxTimeout)
	tx, err := lt.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		cancel()
		return nil, err
	}

	lt.tx = tx
	lt.cancel = cancel

	return tx, nil
}

func (lt *lazyTx) started() bool {
	return lt.tx != nil
}

// AfterCommit defers fn until the request transaction carried by ctx commits.
// fn is dropped on rollback. It runs at once when ctx carries no transaction.
func AfterCommit(ctx context.Context, fn func()) {
	if lt := lazyTxFromContext(ctx); lt != nil {
		lt.afterCommit = append(lt.afterCommit, fn)
		return
	}

	fn()
}

func (lt *lazyTx) runAfterCommit() {
	hooks := lt.afterCommit
	lt.afterCommit = nil

	for _, fn := range hooks {
		fn()
	}
}

func ContextWithTx(ctx context.Context, tx TxInterface) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func TxFromContext(ctx context.Context) TxInterface {
	if tx, ok := ctx.Value(txContextKey{}).(TxInterface); ok {
		return tx
	}
	return nil
}

func lazyTxFromContext(ctx context.Context) *lazyTx {
	if lt, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx); ok {
		return lt
	}
	return nil
}

// WithTx runs fn with a lazily opened transaction that is committed when fn succeeds
// and rolled back otherwise. Nothing is opened if fn never touches the database.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	lt := &lazyTx{db: d.db}

	defer func() {
		if lt.started() && !lt.committed {
			if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				d.logger.Errorf("failed to rollback transaction: %v", err)
			}
		}
		if lt.cancel != nil {
			lt.cancel()
		}
	}()

	if err := fn(context.WithValue(ctx, lazyTxContextKey{}, lt)); err != nil {
		return err
	}

	if !lt.started() {
		lt.runAfterCommit()
		return nil
	}

	if err := lt.tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	lt.committed = true
	lt.runAfterCommit()

	return nil
}
