package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func decodeToast(t *testing.T, trigger string) map[string]string {
	t.Helper()
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	raw, ok := parsed["showToast"]
	if !ok {
		t.Fatal("expected showToast key in HX-Trigger JSON")
	}
	var toast map[string]string
	if err := json.Unmarshal(raw, &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return toast
}

func TestSetToast_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	SetToast(e, "success", "台账已保存")

	trigger := rec.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	toast := decodeToast(t, trigger)
	if toast["message"] != "台账已保存" {
		t.Errorf("message = %q", toast["message"])
	}
	if toast["type"] != "success" {
		t.Errorf("type = %q, want success", toast["type"])
	}

	// Flash cookie for non-HTMX redirects
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash_toast" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected flash_toast cookie to be set")
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	rec.Header().Set("HX-Trigger", `{"ledger-saved":{}}`)
	SetToast(e, "success", "Merged toast")

	trigger := rec.Header().Get("HX-Trigger")
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := parsed["ledger-saved"]; !ok {
		t.Error("expected ledger-saved key to be preserved after merge")
	}
	if toast := decodeToast(t, trigger); toast["message"] != "Merged toast" {
		t.Errorf("message = %q", toast["message"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	rec.Header().Set("HX-Trigger", "notValidJSON")
	SetToast(e, "error", "Overwritten")

	toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	if toast["message"] != "Overwritten" {
		t.Errorf("message = %q", toast["message"])
	}
}

func TestErrorToast_SetsHeaderAndReswap(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	if err := ErrorToast(e, http.StatusConflict, "版本已封版，台账只读"); err != nil {
		t.Fatalf("ErrorToast returned error: %v", err)
	}

	toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	if toast["type"] != "error" {
		t.Errorf("type = %q, want error", toast["type"])
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Errorf("HX-Reswap = %q, want none", rec.Header().Get("HX-Reswap"))
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if rec.Body.String() != "版本已封版，台账只读" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestErrorToast_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input"},
		{"not found", http.StatusNotFound, "Not found"},
		{"conflict", http.StatusConflict, "Resource conflict"},
		{"server error", http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			ErrorToast(e, tt.code, tt.msg)

			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
		})
	}
}
