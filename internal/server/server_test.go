package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
)

type fakeGenerations struct {
	gen              *orchestration.Generation
	delivered, stale int64
}

func (f fakeGenerations) Current() *orchestration.Generation { return f.gen }
func (f fakeGenerations) Stats() (int64, int64)              { return f.delivered, f.stale }

func TestServerHealthz(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(New(nil, nil, nil).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServerStatusWithoutGeneration(t *testing.T) {
	t.Parallel()
	board := progress.NewBoard()
	board.OnReset(2)
	board.OnProgress(1, 5)
	board.OnGrandTotalChanged(5)

	srv := New(nil, fakeGenerations{delivered: 7, stale: 2}, board)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Nil(t, st.Generation)
	assert.Equal(t, []int{0, 5}, st.Display.Values)
	assert.Equal(t, 5, st.Display.GrandTotal)
	assert.Equal(t, int64(7), st.Delivered)
	assert.Equal(t, int64(2), st.Stale)
}

func TestServerStatusReportsLiveGeneration(t *testing.T) {
	t.Parallel()
	c := orchestration.NewCoordinator(progress.NullSink{})
	defer c.Close()

	gen, err := c.Start(context.Background(), orchestration.ConfigsFromIntervals([]float64{1, 1}))
	require.NoError(t, err)
	require.NoError(t, gen.Wait(context.Background()))

	srv := New(nil, c, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.NotNil(t, st.Generation)
	assert.Equal(t, gen.ID(), st.Generation.ID)
	assert.Equal(t, 200, st.Generation.GrandTotal)
	assert.Len(t, st.Generation.Workers, 2)
	assert.True(t, st.Generation.Done)
}

func TestServerStatusRejectsPost(t *testing.T) {
	t.Parallel()
	srv := New(nil, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerMetricsRouteCountsRequests(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	srv := New(m, nil, nil)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tallyrun_requests_total 3")
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestServerServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- New(nil, nil, nil).Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
