// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package zprnet provides the deployment-facing network plan: the
// well-known ports and service addresses a node needs to join a ZPR
// network. The default plan mirrors the protocol constants in
// lib/addr; deployments override it with a plan file authored as JSONC
// (JSON extended with comments and trailing commas).
package zprnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/zpr-foundation/zprproto/lib/addr"
)

// ErrInvalidPlan is wrapped when a plan fails validation.
var ErrInvalidPlan = errors.New("invalid network plan")

// ServicePlan locates one well-known service.
type ServicePlan struct {
	// Addr is the service's ZPR address, inside the internal network.
	Addr netip.Addr `json:"addr"`
	Port uint16     `json:"port"`
	// Proto is the IP protocol number, 6 for TCP.
	Proto uint8 `json:"proto"`
}

// Plan is the network plan for one ZPR deployment.
type Plan struct {
	// TetherPort is the UDP port actors dial to reach their node.
	TetherPort uint16 `json:"tetherPort"`
	// LinkPort is the UDP port nodes use for node-to-node links.
	LinkPort uint16 `json:"linkPort"`
	// TempLocalAddr is the scratch address an actor uses before the
	// visa service assigns it a real one.
	TempLocalAddr netip.Addr `json:"tempLocalAddr"`
	// VisaService locates the visa service.
	VisaService ServicePlan `json:"visaService"`
}

// DefaultPlan is the plan every deployment starts from, mirroring the
// protocol's well-known constants.
func DefaultPlan() Plan {
	return Plan{
		TetherPort:    addr.DefaultTetherPort,
		LinkPort:      addr.DefaultLinkPort,
		TempLocalAddr: addr.TempLocalAddress,
		VisaService: ServicePlan{
			Addr:  addr.VisaServiceIP,
			Port:  addr.VisaServicePort,
			Proto: addr.VisaServiceProto,
		},
	}
}

// Validate checks the plan: ports must be nonzero and distinct, and
// the visa service must live inside the internal network.
func (p Plan) Validate() error {
	if p.TetherPort == 0 {
		return fmt.Errorf("%w: tether port is 0", ErrInvalidPlan)
	}
	if p.LinkPort == 0 {
		return fmt.Errorf("%w: link port is 0", ErrInvalidPlan)
	}
	if p.TetherPort == p.LinkPort {
		return fmt.Errorf("%w: tether and link ports collide on %d", ErrInvalidPlan, p.TetherPort)
	}
	if p.VisaService.Port == 0 {
		return fmt.Errorf("%w: visa service port is 0", ErrInvalidPlan)
	}
	if !p.VisaService.Addr.IsValid() {
		return fmt.Errorf("%w: visa service address is unset", ErrInvalidPlan)
	}
	if !addr.InternalNetwork.Contains(p.VisaService.Addr) {
		return fmt.Errorf("%w: visa service %s is outside %s",
			ErrInvalidPlan, p.VisaService.Addr, addr.InternalNetwork)
	}
	return nil
}

// VisaServiceAddress is the visa service location as a protocol
// address.
func (p Plan) VisaServiceAddress() addr.Address {
	return addr.MustFromIP(p.VisaService.Addr)
}

// Parse strips JSONC comments and trailing commas from data, applies
// the result on top of the default plan, and validates. Fields absent
// from the file keep their defaults.
func Parse(data []byte) (Plan, error) {
	stripped := jsonc.ToJSON(data)

	plan := DefaultPlan()
	if err := json.Unmarshal(stripped, &plan); err != nil {
		return Plan{}, fmt.Errorf("parsing plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// LoadPlan reads a JSONC plan file from disk and parses it.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading %s: %w", path, err)
	}
	plan, err := Parse(data)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}
