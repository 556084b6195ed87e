package core

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage rejects a chat turn before any store access happens.
var ErrEmptyMessage = errors.New("message content cannot be empty")

type GatewayErrorKind string

const (
	GatewayRateLimited   GatewayErrorKind = "rate_limited"
	GatewayQuotaExceeded GatewayErrorKind = "quota_exceeded"
	GatewayFailed        GatewayErrorKind = "gateway_failed"
)

// GatewayError is a classified completion-gateway failure. Rate-limit and
// quota conditions map to 429 at the HTTP boundary, everything else to 500.
type GatewayError struct {
	Kind GatewayErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("completion gateway failed (%s): %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
