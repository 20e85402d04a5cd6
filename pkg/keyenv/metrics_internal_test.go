package keyenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest_SafeWithoutInit(t *testing.T) {
	// Must be a no-op rather than a nil-pointer panic when the caller
	// never opted in to metrics.
	recordRequest("get_secrets", 200, 0.042)
	recordRequest("set_secret", 0, 1.5)
}

func TestInitMetrics(t *testing.T) {
	InitMetrics()

	require.True(t, MetricsRegistered())
	assert.NotNil(t, requestsTotal)
	assert.NotNil(t, requestDuration)

	// Registering twice must not panic with a duplicate-collector error.
	InitMetrics()
	assert.True(t, MetricsRegistered())

	recordRequest("get_secrets", 200, 0.042)
	recordRequest("delete_secret", 404, 0.010)
}
