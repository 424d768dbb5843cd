package types

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrScanInProgress = errors.New("scan already in progress")
)
