package clubio_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clubio "github.com/clubio/go-clubio"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...clubio.ClientOption) (*clubio.Client, *clubio.MemoryTokenStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := clubio.NewMemoryTokenStore()
	cfg := &clubio.ClientConfig{BaseURL: srv.URL, RequestTimeout: 5}

	return clubio.NewClient(cfg, store, opts...), store
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func TestBearerHeaderAttachedWhenTokenHeld(t *testing.T) {
	var gotAuth string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []clubio.Event{})
	}))

	require.NoError(t, store.Set("abc123"))

	res := client.Events(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var hadAuth bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []clubio.Event{})
	}))

	res := client.Events(context.Background())
	require.True(t, res.OK())
	assert.False(t, hadAuth)
}

func TestRequestIDHeaderSentPerRequest(t *testing.T) {
	var gotID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(clubio.HeaderRequestID)
		writeJSON(w, http.StatusOK, []clubio.Club{})
	}))

	res := client.Clubs(context.Background())
	require.True(t, res.OK())
	assert.NotEmpty(t, gotID)
}

func TestSuccessBodyDecoded(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/get_event/all/", r.URL.Path)
		writeJSON(w, http.StatusOK, []clubio.Event{
			{ID: 1, Name: "Open Mic", Location: "Main Hall"},
		})
	}))

	res := client.Events(context.Background())
	require.True(t, res.OK())
	require.NotNil(t, res.Data)

	events := res.Value()
	require.Len(t, events, 1)
	assert.Equal(t, "Open Mic", events[0].Name)
	assert.Empty(t, res.Error)
}

func TestErrorDetailSurfaced(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	}))

	res := client.Events(context.Background())
	require.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Equal(t, "Invalid credentials", res.Error)
}

func TestErrorFallbackStatusMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))

	res := client.Events(context.Background())
	require.False(t, res.OK())
	assert.Equal(t, "HTTP error! status: 502", res.Error)
}

func TestMalformedSuccessBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	}))

	res := client.Events(context.Background())
	require.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Equal(t, "invalid response body", res.Error)
}

func TestTransportFailureProducesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cfg := &clubio.ClientConfig{BaseURL: srv.URL, RequestTimeout: 5}
	client := clubio.NewClient(cfg, clubio.NewMemoryTokenStore())

	res := client.Events(context.Background())
	require.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.NotEmpty(t, res.Error)
}

func TestIdempotentRequestsRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "try later"})
			return
		}
		writeJSON(w, http.StatusOK, []clubio.Event{{ID: 7}})
	}), clubio.WithRetryPolicy(clubio.RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1,
	}))

	res := client.Events(context.Background())
	require.True(t, res.OK())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "no such event"})
	}), clubio.WithRetryPolicy(clubio.DefaultRetryPolicy()))

	res := client.Event(context.Background(), 42)
	require.False(t, res.OK())
	assert.Equal(t, "no such event", res.Error)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestMutationsNeverRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	}), clubio.WithRetryPolicy(clubio.DefaultRetryPolicy()))

	res := client.CreateEvent(context.Background(), clubio.EventPayload{Name: "Launch"})
	require.False(t, res.OK())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCSVUploadReturnsRawBody(t *testing.T) {
	report := []byte("email,status\na@example.com,added\n")
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/membership/upload_members_file/", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "members.csv", header.Filename)

		w.Header().Set("Content-Type", "text/csv")
		w.Write(report)
	}))

	res := client.UploadMembersCSV(context.Background(), "members.csv", []byte("email\na@example.com\n"))
	require.True(t, res.OK())
	assert.Equal(t, report, res.Value())
}

func TestQueryParametersEncoded(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("club_id")
		writeJSON(w, http.StatusOK, []clubio.Event{})
	}))

	res := client.ClubEvents(context.Background(), 12)
	require.True(t, res.OK())
	assert.Equal(t, "12", gotQuery)
}

type countingObserver struct {
	requests int32
	failures int32
	retries  int32
}

func (o *countingObserver) RecordRequest(string, string, int, time.Duration) {
	atomic.AddInt32(&o.requests, 1)
}

func (o *countingObserver) RecordTransportFailure(string, string) {
	atomic.AddInt32(&o.failures, 1)
}

func (o *countingObserver) RecordRetry(string) {
	atomic.AddInt32(&o.retries, 1)
}

func TestObserverSeesRequestsAndRetries(t *testing.T) {
	obs := &countingObserver{}
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusInternalServerError, nil)
			return
		}
		writeJSON(w, http.StatusOK, []clubio.Club{})
	}),
		clubio.WithObserver(obs),
		clubio.WithRetryPolicy(clubio.RetryPolicy{MaxAttempts: 2, InitialBackoff: 1}),
	)

	res := client.Clubs(context.Background())
	require.True(t, res.OK())
	assert.EqualValues(t, 2, atomic.LoadInt32(&obs.requests))
	assert.EqualValues(t, 1, atomic.LoadInt32(&obs.retries))
	assert.EqualValues(t, 0, atomic.LoadInt32(&obs.failures))
}
