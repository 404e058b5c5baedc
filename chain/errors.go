// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import (
	"errors"
	"fmt"
)

// ErrNoCheckpoint is returned by LatestCheckpoint when the tree has no leaves
// as of the requested block.
var ErrNoCheckpoint = errors.New("no checkpoint at requested block")

type ErrorKind int

const (
	Transient ErrorKind = iota
	Permanent
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ChainCommunicationError is returned by mailbox adapters when a chain query
// or submission fails. Kind tells callers whether retrying can help.
type ChainCommunicationError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ChainCommunicationError) Error() string {
	return fmt.Sprintf("%s: %s chain error: %v", e.Op, e.Kind, e.Err)
}

func (e *ChainCommunicationError) Unwrap() error {
	return e.Err
}

func NewTransientError(op string, err error) error {
	return &ChainCommunicationError{Kind: Transient, Op: op, Err: err}
}

func NewPermanentError(op string, err error) error {
	return &ChainCommunicationError{Kind: Permanent, Op: op, Err: err}
}

// IsPermanent reports whether err, or anything it wraps, is classified as
// non-retryable.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var permanent interface{ Permanent() bool }
	if errors.As(err, &permanent) && permanent.Permanent() {
		return true
	}
	var chainErr *ChainCommunicationError
	if errors.As(err, &chainErr) {
		return chainErr.Kind == Permanent
	}
	return false
}

// IsTransient is the complement of IsPermanent. Unclassified errors are transient.
func IsTransient(err error) bool {
	return err != nil && !IsPermanent(err)
}
