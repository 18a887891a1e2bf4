package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFoodCall_CountsOutcomes(t *testing.T) {
	before := testutil.ToFloat64(foodServiceRequestsTotal.WithLabelValues("metrics_test_op", "error"))
	ObserveFoodCall("metrics_test_op", time.Now(), errors.New("boom"))
	ObserveFoodCall("metrics_test_op", time.Now(), nil)

	if got := testutil.ToFloat64(foodServiceRequestsTotal.WithLabelValues("metrics_test_op", "error")); got != before+1 {
		t.Fatalf("error outcome not counted: %v", got)
	}
	if got := testutil.ToFloat64(foodServiceRequestsTotal.WithLabelValues("metrics_test_op", "ok")); got < 1 {
		t.Fatalf("ok outcome not counted: %v", got)
	}
}

func TestSetDependencyUp_TracksLatestProbe(t *testing.T) {
	SetDependencyUp("metrics_test_dep", true)
	if got := testutil.ToFloat64(dependencyUp.WithLabelValues("metrics_test_dep")); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	SetDependencyUp("metrics_test_dep", false)
	if got := testutil.ToFloat64(dependencyUp.WithLabelValues("metrics_test_dep")); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveHTTP("metrics_test_route", http.StatusOK)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "tracknfresh_http_requests_total") {
		t.Fatalf("collector missing from exposition")
	}
}
