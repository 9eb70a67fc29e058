// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package zprnet_test

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/zprnet"
)

func TestDefaultPlan(t *testing.T) {
	plan := zprnet.DefaultPlan()
	if err := plan.Validate(); err != nil {
		t.Fatalf("default plan invalid: %v", err)
	}
	if plan.TetherPort != 5000 || plan.LinkPort != 5001 {
		t.Errorf("ports = %d/%d, want 5000/5001", plan.TetherPort, plan.LinkPort)
	}
	if plan.VisaService.Port != 5002 || plan.VisaService.Proto != 6 {
		t.Errorf("visa service = %+v", plan.VisaService)
	}
	if plan.VisaService.Addr != netip.MustParseAddr("fd5a:5052::1") {
		t.Errorf("visa service addr = %s", plan.VisaService.Addr)
	}
	if plan.VisaServiceAddress() != addr.VisaService {
		t.Errorf("VisaServiceAddress = %v", plan.VisaServiceAddress())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`{
		// Lab deployment moves the tether port.
		"tetherPort": 15000,
		"visaService": {
			"addr": "fd5a:5052::99",
			"port": 15002,
			"proto": 6,
		},
	}`)

	plan, err := zprnet.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.TetherPort != 15000 {
		t.Errorf("TetherPort = %d, want 15000", plan.TetherPort)
	}
	// Absent fields keep their defaults.
	if plan.LinkPort != 5001 {
		t.Errorf("LinkPort = %d, want default 5001", plan.LinkPort)
	}
	if plan.VisaService.Addr != netip.MustParseAddr("fd5a:5052::99") {
		t.Errorf("visa service addr = %s", plan.VisaService.Addr)
	}
	if plan.VisaService.Port != 15002 {
		t.Errorf("visa service port = %d", plan.VisaService.Port)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero tether port", `{"tetherPort": 0}`},
		{"port collision", `{"tetherPort": 5001}`},
		{"visa service outside internal net", `{"visaService": {"addr": "2001:db8::1", "port": 5002, "proto": 6}}`},
		{"zero visa port", `{"visaService": {"addr": "fd5a:5052::1", "port": 0, "proto": 6}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := zprnet.Parse([]byte(tt.data)); !errors.Is(err, zprnet.ErrInvalidPlan) {
				t.Errorf("Parse error = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := zprnet.Parse([]byte(`{"tetherPort": }`)); err == nil {
		t.Error("malformed plan parsed")
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.jsonc")
	content := `{
		/* staging network */
		"linkPort": 15001,
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	plan, err := zprnet.LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if plan.LinkPort != 15001 {
		t.Errorf("LinkPort = %d, want 15001", plan.LinkPort)
	}

	if _, err := zprnet.LoadPlan(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("missing file loaded")
	}
}
