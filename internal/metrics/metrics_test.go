package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBookingDecision(t *testing.T) {
	before := testutil.ToFloat64(bookingDecisions.WithLabelValues("create", "accepted"))
	RecordBookingDecision("create", "accepted")
	RecordBookingDecision("create", "accepted")
	assert.Equal(t, before+2, testutil.ToFloat64(bookingDecisions.WithLabelValues("create", "accepted")))
}

func TestEventCountersSplitByResult(t *testing.T) {
	okBefore := testutil.ToFloat64(eventsPublished.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(eventsPublished.WithLabelValues("error"))
	RecordEventPublished(true)
	RecordEventPublished(false)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(eventsPublished.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(eventsPublished.WithLabelValues("error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordProvisioning("Member", "create", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gym_identity_provisioning_total")
}
