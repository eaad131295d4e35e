package app

import (
	"encoding/json"
	"testing"
)

const fingerprint55 = "bf83d2b83c2587126a001016346f0d206b9e61b3c93819963f7c79e4b8e5348b"

func TestPolicyFingerprint(t *testing.T) {
	if got := PolicyFingerprint("55-45-17"); got != fingerprint55 {
		t.Fatalf("PolicyFingerprint=%s, want %s", got, fingerprint55)
	}
	if PolicyFingerprint("55-45-17") != PolicyFingerprint("55-45-17") {
		t.Fatalf("fingerprint is not deterministic")
	}
	if PolicyFingerprint("other") == fingerprint55 {
		t.Fatalf("different secrets share a fingerprint")
	}
}

func TestHandshakeAcceptAlways(t *testing.T) {
	h, err := NewHandshakeValidator(HandshakeConfig{Secret: "55-45-17", Module: "n3x-rtc", Phase: 10, Mode: "PROOF_ONLY"})
	if err != nil {
		t.Fatalf("NewHandshakeValidator: %v", err)
	}
	m := newMember()
	first := h.Accept(m)
	second := h.Accept(newMember())
	if string(first) != string(second) {
		t.Fatalf("replies differ: %s vs %s", first, second)
	}
	if !m.Peer().HandshakeAccepted() {
		t.Fatalf("peer not marked accepted")
	}

	var reply map[string]any
	if err := json.Unmarshal(first, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	want := map[string]any{
		"status":      "ACCEPTED",
		"phase":       float64(10),
		"module":      "n3x-rtc",
		"policy_hash": fingerprint55,
		"mode":        "PROOF_ONLY",
	}
	for k, v := range want {
		if reply[k] != v {
			t.Fatalf("reply[%q]=%v, want %v", k, reply[k], v)
		}
	}
	if h.Fingerprint() != fingerprint55 {
		t.Fatalf("Fingerprint=%s", h.Fingerprint())
	}
}

func TestHandshakeRequiresSecret(t *testing.T) {
	if _, err := NewHandshakeValidator(HandshakeConfig{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]BackpressureAction{"": DropFrame, "skip": DropFrame, "kick": KickMember} {
		p, err := PolicyByName(name)
		if err != nil {
			t.Fatalf("PolicyByName(%q): %v", name, err)
		}
		if got := p.OnBackPressure(nil, nil); got != want {
			t.Fatalf("PolicyByName(%q) action=%v, want %v", name, got, want)
		}
	}
	if _, err := PolicyByName("retry"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
