package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStatement(t *testing.T) {
	before := testutil.ToFloat64(statementsTotal.WithLabelValues("001_test", "ok"))

	RecordStatement("001_test", "ok")

	assert.Equal(t, before+1, testutil.ToFloat64(statementsTotal.WithLabelValues("001_test", "ok")))
}

func TestRecordError_DefaultsUnknownLabels(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("unknown", "unknown"))

	RecordError("", "")

	assert.Equal(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("unknown", "unknown")))
}

func TestRecordLockOperation(t *testing.T) {
	before := testutil.ToFloat64(lockOperationsTotal.WithLabelValues("acquire", "held"))

	RecordLockOperation("acquire", "held")

	assert.Equal(t, before+1, testutil.ToFloat64(lockOperationsTotal.WithLabelValues("acquire", "held")))
}

func TestSetLastRunSuccess(t *testing.T) {
	SetLastRunSuccess(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(lastRunSuccess))

	SetLastRunSuccess(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(lastRunSuccess))
}

func TestPush(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	RecordStageTransition("start", "provision_schema")

	require.NoError(t, Push(context.Background(), srv.URL, "settings_provisioner", "run-1"))
	assert.True(t, strings.HasPrefix(path, "/metrics/job/settings_provisioner"))
	assert.Contains(t, path, "run_id/run-1")
}

func TestPush_BlankURLIsNoop(t *testing.T) {
	assert.NoError(t, Push(context.Background(), "", "job", ""))
}
