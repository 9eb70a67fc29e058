// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy provides the shared policy attribute model: the
// domain-qualified attributes that ZPL policies, visa service
// decisions, and connect-request claims all speak.
//
// An attribute lives in a domain (user, endpoint, service, or the
// reserved zpr internal domain) and is a tag, a single-valued tuple,
// or a multi-valued tuple. Attributes render in three forms: the
// schema form with multiplicity and optionality hints, the instance
// form without hints, and the ZPL key/value form used when compiling
// policy conditions.
package policy
