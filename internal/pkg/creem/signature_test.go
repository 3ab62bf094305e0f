package creem

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"foo":"bar"}`)
	secret := "top-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, "  "+validSig+"  ", secret) {
		t.Fatalf("expected signature with surrounding whitespace to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected wrong signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
}

func TestVerifyWebhookSignature_MalformedInputs(t *testing.T) {
	payload := []byte(`{}`)

	if VerifyWebhookSignature(payload, "", "secret") {
		t.Fatalf("expected missing signature to fail")
	}
	if VerifyWebhookSignature(payload, "zzzz-not-hex", "secret") {
		t.Fatalf("expected non-hex signature to fail")
	}
	if VerifyWebhookSignature(payload, "abcdef", "") {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestVerifyWebhookSignature_ExactBodyBytes(t *testing.T) {
	// Signature is computed over the raw body; a whitespace change breaks it.
	payload := []byte(`{"a": 1}`)
	secret := "s"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	if VerifyWebhookSignature([]byte(`{"a":1}`), sig, secret) {
		t.Fatalf("expected re-serialized body to fail verification")
	}
}
