// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/dn"
)

// sampleClaim is a representative schema binding using cbor struct
// tags, including a core identifier field that serializes via
// TextMarshaler.
type sampleClaim struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value,omitempty"`
	Actor dn.DN  `cbor:"actor,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleClaim{
		Key:   "user.role",
		Value: "marketing",
		Actor: dn.MustParse("O=acme,CN=client"),
	}

	data, err := codec.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleClaim
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	claim := sampleClaim{Key: "endpoint.zone", Value: "dmz"}

	first, err := codec.Marshal(claim)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := codec.Marshal(claim)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestIdentifierTextForm(t *testing.T) {
	// Core identifiers must serialize as their canonical text strings,
	// not as empty maps of unexported fields.
	visa := struct {
		Addr addr.Address `cbor:"addr"`
		Name dn.DN        `cbor:"name"`
	}{Addr: addr.VisaService, Name: dn.VisaServiceDN}

	data, err := codec.Marshal(visa)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	diagnostic, err := codec.Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"ipv6:fd5a:5052::1"`) {
		t.Errorf("address not serialized as canonical text: %s", diagnostic)
	}
	if !strings.Contains(diagnostic, `"CN=vs.zpr"`) {
		t.Errorf("DN not serialized as canonical text: %s", diagnostic)
	}

	var decoded struct {
		Addr addr.Address `cbor:"addr"`
		Name dn.DN        `cbor:"name"`
	}
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Addr != visa.Addr || decoded.Name != visa.Name {
		t.Errorf("identifier roundtrip mismatch: %+v", decoded)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	// A newer peer's extra fields must not break decoding.
	extended := map[string]any{
		"key":        "user.role",
		"value":      "eng",
		"novelField": 7,
	}
	data, err := codec.Marshal(extended)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleClaim
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Key != "user.role" || decoded.Value != "eng" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	claims := []sampleClaim{
		{Key: "user.role", Value: "marketing"},
		{Key: "service.tier", Value: "gold"},
		{Key: "endpoint.managed"},
	}

	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf)
	for _, claim := range claims {
		if err := encoder.Encode(claim); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := codec.NewDecoder(&buf)
	for i, want := range claims {
		var got sampleClaim
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode item %d: %v", i, err)
		}
		if got != want {
			t.Errorf("item %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestDefaultMapType(t *testing.T) {
	data, err := codec.Marshal(map[string]any{"inner": map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded is %T, want map[string]any", decoded)
	}
	if _, ok := outer["inner"].(map[string]any); !ok {
		t.Fatalf("inner is %T, want map[string]any", outer["inner"])
	}
}

func TestRawMessageDelaysDecoding(t *testing.T) {
	type envelope struct {
		Kind string           `cbor:"kind"`
		Body codec.RawMessage `cbor:"body"`
	}

	body, err := codec.Marshal(sampleClaim{Key: "user.role", Value: "ops"})
	if err != nil {
		t.Fatalf("Marshal body: %v", err)
	}
	data, err := codec.Marshal(envelope{Kind: "claim", Body: body})
	if err != nil {
		t.Fatalf("Marshal envelope: %v", err)
	}

	var decoded envelope
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	var claim sampleClaim
	if err := codec.Unmarshal(decoded.Body, &claim); err != nil {
		t.Fatalf("Unmarshal body: %v", err)
	}
	if claim.Key != "user.role" || claim.Value != "ops" {
		t.Errorf("claim = %+v", claim)
	}
}
