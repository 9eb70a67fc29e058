// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"fmt"

	"github.com/zpr-foundation/zprproto/lib/addr"
)

// ChallengeAlg identifies the signature algorithm over an
// authentication challenge.
type ChallengeAlg uint8

// ChallengeRsaSha256Pkcs1v15 is the only assigned challenge algorithm.
const ChallengeRsaSha256Pkcs1v15 ChallengeAlg = 0

func (a ChallengeAlg) String() string {
	switch a {
	case ChallengeRsaSha256Pkcs1v15:
		return "rsa-sha256-pkcs1v15"
	default:
		return fmt.Sprintf("[unknown challenge alg %d]", uint8(a))
	}
}

// SelfSignedBlob is a self-signed challenge response: the actor signs
// the challenge with its own key and asserts a common name.
type SelfSignedBlob struct {
	Alg       ChallengeAlg `cbor:"alg"`
	Challenge []byte       `cbor:"challenge"`
	CN        string       `cbor:"cn"`
	Timestamp uint64       `cbor:"timestamp"`
	Signature []byte       `cbor:"signature"`
}

// AuthCodeBlob is an authorization-code challenge response obtained
// from an authentication service actor.
type AuthCodeBlob struct {
	AsaAddr  addr.Address `cbor:"asaAddr"`
	Code     string       `cbor:"code"`
	PKCE     string       `cbor:"pkce"`
	ClientID string       `cbor:"clientId"`
}

// AuthBlob is one challenge response: exactly one of SelfSigned or
// AuthCode is set.
type AuthBlob struct {
	SelfSigned *SelfSignedBlob `cbor:"ss,omitempty"`
	AuthCode   *AuthCodeBlob   `cbor:"ac,omitempty"`
}

// SelfSigned wraps a self-signed challenge response.
func SelfSigned(blob SelfSignedBlob) AuthBlob {
	return AuthBlob{SelfSigned: &blob}
}

// AuthCode wraps an authorization-code challenge response.
func AuthCode(blob AuthCodeBlob) AuthBlob {
	return AuthBlob{AuthCode: &blob}
}

// Validate checks that exactly one branch is set.
func (b AuthBlob) Validate() error {
	if (b.SelfSigned == nil) == (b.AuthCode == nil) {
		return fmt.Errorf("%w: auth blob must be exactly one of self-signed or auth-code", ErrDeserialize)
	}
	return nil
}
