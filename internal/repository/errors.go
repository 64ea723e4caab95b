// Package repository defines the document store used by the booking core
// and the error values shared by every store implementation.  Handlers and
// services distinguish failure scenarios with errors.Is on these values.
// For example, ErrNotFound indicates that a looked-up document does not
// exist, while ErrTxConflict signals that a transaction lost a race with a
// concurrent commit and has to be re-run from its first read.
package repository

import "errors"

// ErrNotFound is returned when a document does not exist.  Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would duplicate an existing
// document, such as inserting a ghat whose id is already present.
var ErrConflict = errors.New("conflict")

// ErrTxConflict is returned by a transaction attempt when a document it
// read was modified by another committed transaction.  RunTx retries the
// whole attempt on this error; callers only see it once retries run out.
var ErrTxConflict = errors.New("transaction conflict")
