// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// and the delivery pipeline to distinguish between failure scenarios with
// errors.Is instead of string matching.
package repository

import "errors"

// ErrInvalidAmount is returned by balance mutations when the amount is not
// strictly positive. Handlers should translate this into an HTTP 400.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientBalance is returned by Debit when the user's balance does
// not cover the requested amount. A user that has never been seen is treated
// as having a balance of zero, so debits against unknown users also return
// this error. No mutation is performed in either case.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrScriptNotFound is returned when a script id does not exist, or when an
// operation requires the script to be enabled and it is not.
var ErrScriptNotFound = errors.New("script not found")
