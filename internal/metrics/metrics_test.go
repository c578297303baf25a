package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSplitFullMethod(t *testing.T) {
	for _, tc := range []struct {
		in          string
		wantService string
		wantMethod  string
	}{
		{"/grpc.health.v1.Health/Check", "grpc.health.v1.Health", "Check"},
		{"bogus", "unknown", "unknown"},
	} {
		s, m := splitFullMethod(tc.in)
		if s != tc.wantService || m != tc.wantMethod {
			t.Errorf("splitFullMethod(%q) = %q, %q; want %q, %q", tc.in, s, m, tc.wantService, tc.wantMethod)
		}
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	IncSettingsUpdate(true)
	IncPersistFailure()
	IncDecodeFallback()
	IncSubscribers()
	DecSubscribers()
	IncMarkedDeleted(2)
	IncSyncRun(true)
	ObserveHTTP("GET", "/v1/settings", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"modflags_settings_updates_total",
		"modflags_settings_persist_failures_total",
		"modflags_settings_decode_fallbacks_total",
		"modflags_settings_subscribers",
		"modflags_messages_marked_deleted_total",
		"modflags_sync_runs_total",
		"modflags_http_requests_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
