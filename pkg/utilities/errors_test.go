package utilities_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: no session", utilities.ErrUnauthenticated), http.StatusUnauthorized},
		{fmt.Errorf("%w: wrong role", utilities.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: bad rating", utilities.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: review 1", utilities.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: duplicate", utilities.ErrConflict), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, utilities.StatusFor(c.err), "%v", c.err)
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	utilities.WriteError(rec, zap.NewNop().Sugar(), errors.New("pq: connection refused"), "Failed to delete review")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to delete review", body["error"])
}

func TestWriteErrorClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	utilities.WriteError(rec, nil, fmt.Errorf("%w: collection point 9", utilities.ErrNotFound), "unused")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found: collection point 9"}`, rec.Body.String())
}

func TestPathID(t *testing.T) {
	cases := map[string]bool{
		"42":   true,
		"-3":   true,
		"abc":  false,
		"12ab": false,
		"":     false,
		"1.5":  false,
	}
	for raw, ok := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.SetPathValue("id", raw)
		_, err := utilities.PathID(r, "id")
		assert.Equal(t, ok, err == nil, "id %q", raw)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := utilities.NewID()
		require.Positive(t, id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
