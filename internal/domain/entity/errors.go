package entity

import "errors"

// Rate source failures
var (
	ErrNetwork = errors.New("network failure")
	ErrDecode  = errors.New("decode failure")
	ErrData    = errors.New("data failure")
)

// Rate store failures
var (
	ErrCorruptStore = errors.New("corrupt rate store")
	ErrWriteFailure = errors.New("rate store write failure")
)

// Conversion failures
var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrOutOfRange      = errors.New("result out of range")
)

// Input failures
var (
	ErrInvalidAmount = errors.New("invalid amount")
)
