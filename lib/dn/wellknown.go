// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package dn

// VisaServiceCN is the common name of the visa service identity.
const VisaServiceCN = "vs.zpr"

// VisaServiceDN is the well-known visa service distinguished name.
var VisaServiceDN = MustParse("CN=" + VisaServiceCN)
