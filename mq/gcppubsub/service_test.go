package gcppubsub

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionFilter(t *testing.T) {
	assert.Equal(t, "", subscriptionFilter(""))
	assert.Equal(t, `attributes.borough = "Staten Island"`, subscriptionFilter("Staten Island"))
	assert.Equal(t, `attributes.borough = "a\"b"`, subscriptionFilter(`a"b`))
}

func TestSubscriptionName(t *testing.T) {
	id := uuid.MustParse("6f1c2e34-5b8a-4c1d-9e0f-123456789abc")
	assert.Equal(t, "sub-datasetevent-staten_island-6f1c2e34-5b8a-4c1d-9e0f-123456789abc", subscriptionName("DatasetEvent", "Staten Island", id))
	assert.Equal(t, "sub-datasetevent-all-6f1c2e34-5b8a-4c1d-9e0f-123456789abc", subscriptionName("DatasetEvent", "", id))
}

func TestGetGCPProjectID(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "")
	assert.Equal(t, "gen-lang-client-0589793979", GetGCPProjectID())
	t.Setenv("GCP_PROJECT_ID", "test-project")
	assert.Equal(t, "test-project", GetGCPProjectID())
}
