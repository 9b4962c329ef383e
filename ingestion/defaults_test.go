package ingestion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/luizstacio/fuel-indexer/ingestion"
)

func TestDefaultDefaults(t *testing.T) {
	d := ingestion.DefaultDefaults()
	assert.Equal(t, 10, d.PageSize)
	assert.Equal(t, 5*time.Second, d.DelayForServiceErr)
	assert.Equal(t, 1*time.Second, d.DelayForEmptyPage)
	assert.Equal(t, 10, d.MaxEmptyBlockRequests)
	assert.Equal(t, 10, d.IndexFailedCalls)
	assert.False(t, d.StopIdleIndexers)
	assert.Equal(t, 100, d.ServiceRequestChannelSize)
}
