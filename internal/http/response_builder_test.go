package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	header := rr.Header().Get("HX-Trigger")
	if header == "" {
		t.Fatalf("no HX-Trigger header set")
	}
	var triggers map[string]interface{}
	if err := json.Unmarshal([]byte(header), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	return triggers
}

func TestBuilderWritesStatusAndBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML("<p>done</p>").
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if rr.Body.String() != "<p>done</p>" {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestBuilderMarshalsTriggers(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerExpensesSaved("2025-06-01", 3).
		TriggerFormReset().
		Write(rr)

	triggers := decodeTriggers(t, rr)
	saved, ok := triggers["expenses:saved"].(map[string]interface{})
	if !ok {
		t.Fatalf("expenses:saved trigger missing: %v", triggers)
	}
	if saved["date"] != "2025-06-01" || saved["count"] != float64(3) {
		t.Fatalf("unexpected trigger data: %v", saved)
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Fatalf("form:reset trigger missing")
	}
}

func TestNotificationDefaults(t *testing.T) {
	cases := []struct {
		name     string
		build    func() *HTMXResponseBuilder
		wantType string
		wantDur  float64
	}{
		{"success", func() *HTMXResponseBuilder { return NewHTMXResponse().TriggerSuccessNotification("ok") }, "success", 3000},
		{"error", func() *HTMXResponseBuilder { return NewHTMXResponse().TriggerErrorNotification("bad") }, "error", 5000},
		{"info", func() *HTMXResponseBuilder { return NewHTMXResponse().TriggerInfoNotification("fyi") }, "info", 4000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.build().Write(rr)

			triggers := decodeTriggers(t, rr)
			notif, ok := triggers["show-notification"].(map[string]interface{})
			if !ok {
				t.Fatalf("show-notification trigger missing")
			}
			if notif["type"] != tc.wantType {
				t.Fatalf("type = %v, want %s", notif["type"], tc.wantType)
			}
			if notif["duration"] != tc.wantDur {
				t.Fatalf("duration = %v, want %v", notif["duration"], tc.wantDur)
			}
		})
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rr)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("message not escaped: %s", body)
	}
	if !strings.Contains(body, `class="error"`) {
		t.Fatalf("missing error wrapper: %s", body)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowedError("POST, DELETE").Write(rr)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "POST, DELETE" {
		t.Fatalf("Allow = %q", allow)
	}
}
