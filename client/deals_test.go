package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/profiradce/profiradce_backend/models"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.Response{Status: status, Message: "ok", Data: data})
}

func TestDealsServedFromCacheUntilInvalidated(t *testing.T) {
	var listCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/deals":
			atomic.AddInt64(&listCalls, 1)
			writeEnvelope(w, http.StatusOK, []models.Deal{{Status: models.DealStatusNew}})
		case r.Method == http.MethodPut:
			writeEnvelope(w, http.StatusOK, nil)
		default:
			writeEnvelope(w, http.StatusNotFound, nil)
		}
	}))
	defer server.Close()

	c := New(server.URL)

	_, err := c.Deals()
	require.NoError(t, err)
	_, err = c.Deals()
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&listCalls), "second read should hit the cache")

	// A status change invalidates the list; the next read refetches
	require.NoError(t, c.UpdateStatus(primitive.NewObjectID().Hex(), models.DealStatusContacted))
	_, err = c.Deals()
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&listCalls))
}

func TestCloseDealInvalidatesCommissionViews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	dealID := primitive.NewObjectID().Hex()
	c.Cache().Set(cacheKeyDeals, []models.Deal{})
	c.Cache().Set(dealCacheKey(dealID), &models.DealDetail{})
	c.Cache().Set(cacheKeyCommissions, []models.Commission{})
	c.Cache().Set(cacheKeyCommissionStats, &models.CommissionStats{})

	value := 100000.0
	require.NoError(t, c.CloseDeal(dealID, models.DealStatusClosedWon, &value))

	// Closing can spawn a commission, so every affected view goes stale
	for _, key := range []string{cacheKeyDeals, dealCacheKey(dealID), cacheKeyCommissions, cacheKeyCommissionStats} {
		_, ok := c.Cache().Get(key)
		assert.False(t, ok, key)
	}
}

func TestCloseDealWonRequiresPositiveValue(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	dealID := primitive.NewObjectID().Hex()

	err := c.CloseDeal(dealID, models.DealStatusClosedWon, nil)
	assert.Equal(t, ErrorKindValidation, KindOf(err))

	zero := 0.0
	err = c.CloseDeal(dealID, models.DealStatusClosedWon, &zero)
	assert.Equal(t, ErrorKindValidation, KindOf(err))

	negative := -5.0
	err = c.CloseDeal(dealID, models.DealStatusClosedWon, &negative)
	assert.Equal(t, ErrorKindValidation, KindOf(err))

	// CLOSED_LOST needs no value
	require.NoError(t, c.CloseDeal(dealID, models.DealStatusClosedLost, nil))

	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "rejected closes must not reach the network")
}

func TestSetValueRejectedClientSide(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	dealID := primitive.NewObjectID().Hex()
	closeDate := time.Now().AddDate(0, 1, 0)

	assert.Equal(t, ErrorKindValidation, KindOf(c.SetValue(dealID, 0, closeDate)))
	assert.Equal(t, ErrorKindValidation, KindOf(c.SetValue(dealID, -100, closeDate)))
	assert.Equal(t, ErrorKindValidation, KindOf(c.SetValue(dealID, 50000, time.Time{})))
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls))

	require.NoError(t, c.SetValue(dealID, 50000, closeDate))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestAddNoteOptimisticApplyAndRollback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	dealID := primitive.NewObjectID().Hex()
	key := dealCacheKey(dealID)

	original := &models.DealDetail{
		Deal: models.Deal{Notes: []models.Note{{Content: "první poznámka"}}},
	}
	c.Cache().Set(key, original)

	err := c.AddNote(dealID, "druhá poznámka")
	require.Error(t, err)
	assert.Equal(t, ErrorKindServer, KindOf(err))

	// Rollback restored the snapshot; the entry is then invalidated so the
	// next read reconciles with the server, but the value underneath is the
	// pre-mutation one
	snapshot := c.Cache().Snapshot(key)
	restored, ok := snapshot.value.(*models.DealDetail)
	require.True(t, ok)
	require.Len(t, restored.Deal.Notes, 1)
	assert.Equal(t, "první poznámka", restored.Deal.Notes[0].Content)
	_, fresh := c.Cache().Get(key)
	assert.False(t, fresh, "entry must be invalidated after a failed mutation")
}

func TestAddNoteRejectsEmptyContent(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	dealID := primitive.NewObjectID().Hex()

	assert.Equal(t, ErrorKindValidation, KindOf(c.AddNote(dealID, "")))
	assert.Equal(t, ErrorKindValidation, KindOf(c.AddNote(dealID, "   \t\n")))
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls))
}

func TestMutationsDoNotRetry(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeEnvelope(w, http.StatusInternalServerError, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.UpdateStatus(primitive.NewObjectID().Hex(), models.DealStatusContacted)
	assert.Equal(t, ErrorKindServer, KindOf(err))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestReadsRetryOnServerErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n < 3 {
			writeEnvelope(w, http.StatusInternalServerError, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, []models.Deal{})
	}))
	defer server.Close()

	c := New(server.URL, WithReadRetries(3, 0))
	c.sleep = func(time.Duration) {}

	_, err := c.Deals()
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestReadsDoNotRetryClientErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeEnvelope(w, http.StatusNotFound, nil)
	}))
	defer server.Close()

	c := New(server.URL)
	c.sleep = func(time.Duration) {}

	_, err := c.Deal(primitive.NewObjectID().Hex())
	assert.Equal(t, ErrorKindNotFound, KindOf(err))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}
