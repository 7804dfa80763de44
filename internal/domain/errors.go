package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrGenerationFailed  = errors.New("generation failed")
)

// ProviderError carries the HTTP-style status returned by the generation
// provider together with the retry classification decided at the call site.
// Classifying once at the origin keeps the retry executor free of any
// knowledge about provider wire formats.
type ProviderError struct {
	Status    int
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with its originating HTTP status. Statuses in the
// 400-499 range are client errors and must not be retried, with the exception
// of 429 which signals throttling. A zero status means the request never
// reached the provider (network failure) and is treated as transient.
func NewProviderError(status int, err error) *ProviderError {
	retryable := true
	if status >= 400 && status < 500 && status != 429 {
		retryable = false
	}
	return &ProviderError{Status: status, Retryable: retryable, Err: err}
}

// IsRetryable reports whether err may be retried. Errors without an explicit
// classification are assumed transient.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}

// QuotaError decorates ErrQuotaExceeded with the remaining-quota metadata a
// caller needs to surface an upgrade prompt.
type QuotaError struct {
	MerchantID string
	Used       int
	Limit      int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded for merchant %s: %d/%d used", e.MerchantID, e.Used, e.Limit)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

// Remaining never reports a negative value.
func (e *QuotaError) Remaining() int {
	if e.Limit > e.Used {
		return e.Limit - e.Used
	}
	return 0
}
