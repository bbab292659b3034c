package collectionpoint

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/collection-points?active=false&wasteTypeId=4&city=Roma&limit=500&offset=10", nil)
	f, err := filterFromQuery(r)
	require.NoError(t, err)

	require.NotNil(t, f.Active)
	assert.False(t, *f.Active)
	assert.Equal(t, int64(4), f.WasteTypeID)
	assert.Equal(t, "Roma", f.City)
	assert.Equal(t, uint(maxLimit), f.Limit)
	assert.Equal(t, uint(10), f.Offset)
}

func TestFilterFromQueryRejectsGarbage(t *testing.T) {
	for _, q := range []string{"active=maybe", "wasteTypeId=plastic", "limit=-1", "offset=x"} {
		_, err := filterFromQuery(httptest.NewRequest(http.MethodGet, "/api/collection-points?"+q, nil))
		assert.Error(t, err, q)
	}
}
