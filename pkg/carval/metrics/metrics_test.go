package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRemote(t *testing.T) {
	before := testutil.ToFloat64(RemoteRequests.WithLabelValues("nhtsa", "decode", "success"))

	ObserveRemote("nhtsa", "decode", "success", time.Now().Add(-50*time.Millisecond))

	after := testutil.ToFloat64(RemoteRequests.WithLabelValues("nhtsa", "decode", "success"))
	assert.Equal(t, before+1, after)
	assert.Positive(t, testutil.CollectAndCount(RemoteRequestDuration))
}
