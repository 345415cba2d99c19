package logger

import "testing"

func TestSanitizePayloadMasksSensitiveKeys(t *testing.T) {
	payload := map[string]any{
		"reference":  "prov-ref-1",
		"channelKey": "super-secret",
		"nested": map[string]any{
			"email":  "user@test.dev",
			"amount": "115",
		},
	}

	sanitized, ok := SanitizePayload(payload).(map[string]any)
	if !ok {
		t.Fatalf("sanitized payload is %T, want map", SanitizePayload(payload))
	}

	if sanitized["reference"] != "prov-ref-1" {
		t.Fatalf("reference = %v, want passthrough", sanitized["reference"])
	}
	if sanitized["channelKey"] != "******" {
		t.Fatalf("channelKey = %v, want masked", sanitized["channelKey"])
	}
	nested, ok := sanitized["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested payload is %T, want map", sanitized["nested"])
	}
	if nested["email"] != "******" {
		t.Fatalf("nested email = %v, want masked", nested["email"])
	}
	if nested["amount"] != "115" {
		t.Fatalf("nested amount = %v, want passthrough", nested["amount"])
	}
}

func TestSanitizePayloadStructRoundTrip(t *testing.T) {
	payload := struct {
		Reference string `json:"reference"`
		Token     string `json:"token"`
	}{Reference: "prov-ref-1", Token: "abc123"}

	sanitized, ok := SanitizePayload(payload).(map[string]any)
	if !ok {
		t.Fatalf("sanitized payload is %T, want map", SanitizePayload(payload))
	}
	if sanitized["token"] != "******" {
		t.Fatalf("token = %v, want masked", sanitized["token"])
	}
	if sanitized["reference"] != "prov-ref-1" {
		t.Fatalf("reference = %v, want passthrough", sanitized["reference"])
	}
}
