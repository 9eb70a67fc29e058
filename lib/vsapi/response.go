// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"fmt"
	"io"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/codec"
)

// Connection is the visa service's answer to a successful
// ConnectRequest: the ZPR address assigned to the actor and when its
// authentication expires.
type Connection struct {
	ZprAddr addr.Address `cbor:"zprAddr"`
	// AuthExpires is milliseconds since the Unix epoch.
	AuthExpires uint64 `cbor:"authExpires"`
}

// DenyCode classifies a visa denial.
type DenyCode uint8

const (
	DenyFail DenyCode = iota
	DenyNoReason
	DenyNoMatch
	DenyDenied
	DenySourceNotFound
	DenyDestNotFound
	DenySourceAuthError
	DenyDestAuthError
	DenyQuotaExceeded
)

var denyCodeNames = map[DenyCode]string{
	DenyFail:            "fail",
	DenyNoReason:        "no-reason",
	DenyNoMatch:         "no-match",
	DenyDenied:          "denied",
	DenySourceNotFound:  "source-not-found",
	DenyDestNotFound:    "dest-not-found",
	DenySourceAuthError: "source-auth-error",
	DenyDestAuthError:   "dest-auth-error",
	DenyQuotaExceeded:   "quota-exceeded",
}

func (c DenyCode) String() string {
	if name, ok := denyCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("[unknown deny code %d]", uint8(c))
}

// Denied carries a denial code and an optional human-readable reason.
type Denied struct {
	Code   DenyCode `cbor:"code"`
	Reason string   `cbor:"reason,omitempty"`
}

// ErrorCode classifies a visa service API error.
type ErrorCode uint8

const (
	ErrorInternal ErrorCode = iota
	ErrorAuthRequired
	ErrorInvalidOperation
	ErrorOutOfSync
	ErrorNotFound
	ErrorInvalidSignature
	ErrorQuotaExceeded
	ErrorTemporarilyUnavailable
	ErrorAuthError
	ErrorParamError
	ErrorUnknownStatusCode
	ErrorFail
)

var errorCodeNames = map[ErrorCode]string{
	ErrorInternal:               "internal",
	ErrorAuthRequired:           "auth-required",
	ErrorInvalidOperation:       "invalid-operation",
	ErrorOutOfSync:              "out-of-sync",
	ErrorNotFound:               "not-found",
	ErrorInvalidSignature:       "invalid-signature",
	ErrorQuotaExceeded:          "quota-exceeded",
	ErrorTemporarilyUnavailable: "temporarily-unavailable",
	ErrorAuthError:              "auth-error",
	ErrorParamError:             "param-error",
	ErrorUnknownStatusCode:      "unknown-status-code",
	ErrorFail:                   "fail",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("[unknown error code %d]", uint8(c))
}

// APIError is an error reported by the visa service itself, as opposed
// to a policy denial.
type APIError struct {
	Code    ErrorCode `cbor:"code"`
	Message string    `cbor:"message,omitempty"`
	// RetryIn is seconds to wait before retrying, 0 when retrying is
	// pointless.
	RetryIn uint32 `cbor:"retryIn,omitempty"`
}

// Error implements the error interface so callers can surface API
// errors directly.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("visa service error: %s", e.Code)
	}
	return fmt.Sprintf("visa service error: %s: %s", e.Code, e.Message)
}

// VisaResponse is the visa service's answer to a visa request: exactly
// one of Allow, Deny, or Err is set.
type VisaResponse struct {
	Allow *Visa     `cbor:"allow,omitempty"`
	Deny  *Denied   `cbor:"deny,omitempty"`
	Err   *APIError `cbor:"error,omitempty"`
}

// AllowResponse wraps a granted visa.
func AllowResponse(visa Visa) VisaResponse {
	return VisaResponse{Allow: &visa}
}

// DenyResponse wraps a denial.
func DenyResponse(code DenyCode, reason string) VisaResponse {
	return VisaResponse{Deny: &Denied{Code: code, Reason: reason}}
}

// ErrorResponse wraps a visa service error.
func ErrorResponse(code ErrorCode, message string, retryIn uint32) VisaResponse {
	return VisaResponse{Err: &APIError{Code: code, Message: message, RetryIn: retryIn}}
}

// Validate checks that exactly one branch is set.
func (r VisaResponse) Validate() error {
	set := 0
	if r.Allow != nil {
		set++
	}
	if r.Deny != nil {
		set++
	}
	if r.Err != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: visa response must be exactly one of allow, deny, or error", ErrDeserialize)
	}
	if r.Allow != nil {
		return r.Allow.DockPep.Validate()
	}
	return nil
}

// Visa returns the granted visa, or an error for deny and error
// responses. Error responses surface as *APIError.
func (r VisaResponse) Visa() (Visa, error) {
	switch {
	case r.Allow != nil:
		return *r.Allow, nil
	case r.Deny != nil:
		if r.Deny.Reason != "" {
			return Visa{}, fmt.Errorf("visa denied: %s: %s", r.Deny.Code, r.Deny.Reason)
		}
		return Visa{}, fmt.Errorf("visa denied: %s", r.Deny.Code)
	case r.Err != nil:
		return Visa{}, r.Err
	default:
		return Visa{}, fmt.Errorf("%w: empty visa response", ErrDeserialize)
	}
}

// WriteTo serializes the response as deterministic CBOR into w.
func (r VisaResponse) WriteTo(w io.Writer) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return encodeCBOR(w, r, "encode visa response")
}

// DecodeVisaResponse is the left inverse of VisaResponse.WriteTo.
func DecodeVisaResponse(r io.Reader) (VisaResponse, error) {
	var resp VisaResponse
	if err := codec.NewDecoder(r).Decode(&resp); err != nil {
		return VisaResponse{}, fmt.Errorf("decode visa response: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return VisaResponse{}, err
	}
	return resp, nil
}
