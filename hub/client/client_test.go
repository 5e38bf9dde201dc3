package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/hub"
)

// testHub is a stub hub serving a space "abc" of features [f1, f2, f3] in
// server-defined iteration order.
type testHub struct {
	mux *http.ServeMux

	metaFetches   int32
	lastMethod    string
	lastQuery     url.Values
	lastDecodedFC *geojson.FeatureCollection
}

func newTestHub() *testHub {
	var h = &testHub{mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /spaces/abc/iterate", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("handle") {
		case "":
			writeJSON(w, &geojson.FeatureCollection{
				Type: "FeatureCollection",
				Features: []geojson.Feature{
					{Type: "Feature", ID: "f1", Geometry: &geojson.Geometry{Type: "Point"}},
					{Type: "Feature", ID: "f2", Geometry: &geojson.Geometry{Type: "Point"}},
				},
				Handle: "h1",
			})
		case "h1":
			writeJSON(w, &geojson.FeatureCollection{
				Type: "FeatureCollection",
				Features: []geojson.Feature{
					{Type: "Feature", ID: "f3", Geometry: &geojson.Geometry{Type: "Point"}},
				},
			})
		default:
			http.Error(w, "bad handle", http.StatusBadRequest)
		}
	})
	h.mux.HandleFunc("GET /spaces/abc", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&h.metaFetches, 1)
		writeJSON(w, map[string]interface{}{"id": "abc", "title": "A Space"})
	})
	h.mux.HandleFunc("PATCH /spaces/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"id": "abc"})
	})
	h.mux.HandleFunc("GET /spaces/abc/bbox", func(w http.ResponseWriter, r *http.Request) {
		h.lastQuery = r.URL.Query()
		writeJSON(w, &geojson.FeatureCollection{Type: "FeatureCollection"})
	})
	h.mux.HandleFunc("GET /spaces/abc/statistics", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
			return
		}
		writeJSON(w, map[string]interface{}{})
	})
	h.mux.HandleFunc("/spaces/abc/features", func(w http.ResponseWriter, r *http.Request) {
		h.lastMethod, h.lastQuery = r.Method, r.URL.Query()

		if r.Method == "POST" || r.Method == "PUT" {
			var fc geojson.FeatureCollection
			if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.lastDecodedFC = &fc
		}
		writeJSON(w, map[string]interface{}{})
	})
	h.mux.HandleFunc("GET /spaces/gz/iterate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		var gz = gzip.NewWriter(w)
		_ = json.NewEncoder(gz).Encode(&geojson.FeatureCollection{
			Type:     "FeatureCollection",
			Features: []geojson.Feature{{Type: "Feature", ID: "zipped"}},
		})
		_ = gz.Close()
	})
	return h
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(v)
}

func startTestHub(t *testing.T) (*testHub, hub.Connection, *Client) {
	var h = newTestHub()
	var srv = httptest.NewServer(h.mux)
	t.Cleanup(srv.Close)

	var c, err = NewClient(srv.Client(), nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return h, hub.Connection{Server: srv.URL, SpaceID: "abc", Token: "tok"}, c
}

func TestIteratePagingSequence(t *testing.T) {
	var _, conn, c = startTestHub(t)

	// Page one: issued without a cursor.
	var r = c.LoadFeaturesIterate(conn, hub.Page{Limit: 2}, nil)
	require.Equal(t, TagIterate, r.Context.Tag)
	require.Empty(t, r.Context.Cursor)

	fc, err := r.FeatureCollection()
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	require.Equal(t, "h1", fc.Handle)

	// Page two: driven by page one's cursor, passed through unmodified.
	r = c.LoadFeaturesIterate(conn, hub.Page{Limit: 2, Handle: fc.Handle}, nil)
	require.Equal(t, "h1", r.Context.Cursor)

	fc2, err := r.FeatureCollection()
	require.NoError(t, err)
	require.Len(t, fc2.Features, 1)
	require.Empty(t, fc2.Handle)

	// No feature is repeated across the sequence.
	var seen = map[string]bool{}
	for _, f := range append(fc.Features, fc2.Features...) {
		require.False(t, seen[f.ID], "feature %s repeated", f.ID)
		seen[f.ID] = true
	}
	require.Equal(t, map[string]bool{"f1": true, "f2": true, "f3": true}, seen)
}

func TestPagerDrivesFullSequence(t *testing.T) {
	var _, conn, c = startTestHub(t)

	var pager, err = NewPager(c, conn, TagIterate, hub.Page{Limit: 2}, nil)
	require.NoError(t, err)

	var ids []string
	for !pager.Done() {
		var fc *geojson.FeatureCollection
		fc, err = pager.Next()
		require.NoError(t, err)
		if fc == nil {
			break
		}
		for _, f := range fc.Features {
			ids = append(ids, f.ID)
		}
	}
	require.Equal(t, []string{"f1", "f2", "f3"}, ids)

	// An exhausted Pager returns (nil, nil).
	fc, err := pager.Next()
	require.NoError(t, err)
	require.Nil(t, fc)

	_, err = NewPager(c, conn, TagBbox, hub.Page{}, nil)
	require.Error(t, err)
}

func TestDeleteFeaturesQuery(t *testing.T) {
	var h, conn, c = startTestHub(t)

	require.NoError(t, c.DeleteFeatures(conn, []string{"f1", "f2"}, nil).Err())
	require.Equal(t, "DELETE", h.lastMethod)
	require.Equal(t, "f1,f2", h.lastQuery.Get("id"))

	// An empty id list is a caller error, not a delete-all.
	var r = c.DeleteFeatures(conn, nil, nil)
	require.Error(t, r.Err())
	require.Equal(t, TagDelFeat, r.Context.Tag)
}

func TestAddReplaceFeatureSemantics(t *testing.T) {
	var h, conn, c = startTestHub(t)
	var fc = geojson.NewFeatureCollection([]geojson.Feature{
		{Type: "Feature", ID: "f9", Properties: map[string]interface{}{"k": "v"}},
	})

	// Merge semantics are a POST, with "tags" renamed to "addTags".
	var r = c.AddFeatures(conn, fc, url.Values{"tags": {"t1,t2"}})
	require.NoError(t, r.Err())
	require.Equal(t, "POST", h.lastMethod)
	require.Equal(t, "t1,t2", h.lastQuery.Get("addTags"))
	require.Empty(t, h.lastQuery.Get("tags"))
	require.Len(t, h.lastDecodedFC.Features, 1)

	// Replace semantics are a PUT.
	r = c.ReplaceFeatures(conn, fc, nil)
	require.NoError(t, r.Err())
	require.Equal(t, "PUT", h.lastMethod)

	// ModifyFeatures is an alias of AddFeatures.
	r = c.ModifyFeatures(conn, fc, nil)
	require.NoError(t, r.Err())
	require.Equal(t, "POST", h.lastMethod)
}

func TestStatisticsTimeoutAborts(t *testing.T) {
	var _, conn, c = startTestHub(t)

	var started = time.Now()
	var r = c.FetchStatistics(conn)

	var err = r.Err()
	require.Error(t, err)
	require.IsType(t, &TransportError{}, err)
	require.Equal(t, TagStatistics, err.(*TransportError).Tag)

	// The abort fired at the timeout, well before the server's reply.
	require.Less(t, time.Since(started), 3*time.Second)

	// Aborting a completed reply is an idempotent no-op.
	r.Abort()
	r.Abort()
}

func TestFetchMetaIsCached(t *testing.T) {
	var h, conn, c = startTestHub(t)

	var r = c.FetchMeta(conn)
	meta, err := r.SpaceMeta()
	require.NoError(t, err)
	require.Equal(t, "abc", meta.ID)
	require.False(t, r.Cached)

	// The population of the cache races the reply's resolution; poll for it.
	require.Eventually(t, func() bool {
		return c.FetchMeta(conn).Cached
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&h.metaFetches))

	// An edit drops the cached document.
	require.NoError(t, c.EditSpace(conn, meta).Err())
	r = c.FetchMeta(conn)
	require.NoError(t, r.Err())
	require.False(t, r.Cached)
}

func TestGzipReplyDecoding(t *testing.T) {
	var _, conn, c = startTestHub(t)
	conn.SpaceID = "gz"

	var fc, err = c.LoadFeaturesIterate(conn, hub.Page{}, nil).FeatureCollection()
	require.NoError(t, err)
	require.Equal(t, "zipped", fc.Features[0].ID)
}

func TestCompletionDispatchIsSerial(t *testing.T) {
	var h = newTestHub()
	var srv = httptest.NewServer(h.mux)
	defer srv.Close()

	var inHandler, overlapped int32
	var calls = make(chan string, 16)

	var c, err = NewClient(srv.Client(), func(r *Reply) {
		if atomic.AddInt32(&inHandler, 1) != 1 {
			atomic.StoreInt32(&overlapped, 1)
		}
		calls <- r.Context.Tag
		atomic.AddInt32(&inHandler, -1)
	})
	require.NoError(t, err)
	defer c.Close()

	var conn = hub.Connection{Server: srv.URL, SpaceID: "abc"}
	for i := 0; i != 8; i++ {
		c.LoadFeaturesIterate(conn, hub.Page{}, nil)
	}
	for i := 0; i != 8; i++ {
		select {
		case tag := <-calls:
			require.Equal(t, TagIterate, tag)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out awaiting dispatch")
		}
	}
	require.Zero(t, atomic.LoadInt32(&overlapped), "handler invocations overlapped")
}

func TestTransportErrorCarriesContext(t *testing.T) {
	var c, err = NewClient(nil, nil)
	require.NoError(t, err)
	defer c.Close()

	// A connection to a closed port fails at the transport.
	var conn = hub.Connection{Server: "http://127.0.0.1:1", SpaceID: "abc"}
	var r = c.LoadFeaturesSearch(conn, hub.Page{Handle: "h9"}, url.Values{"p.q": {"v"}})

	err = r.Err()
	require.Error(t, err)

	var te, ok = err.(*TransportError)
	require.True(t, ok)
	require.Equal(t, TagSearch, te.Tag)
	require.Equal(t, "h9", r.Context.Cursor)
	require.Equal(t, url.Values{"p.q": {"v"}}, r.Context.Params)
}

func TestRequestContextIsPopulated(t *testing.T) {
	var _, conn, c = startTestHub(t)

	var bbox = hub.Bbox{West: -1, South: -1, East: 1, North: 1}
	var r = c.LoadFeaturesByBbox(conn, bbox, url.Values{"limit": {"5"}})
	require.NoError(t, r.Err())

	require.Equal(t, TagBbox, r.Context.Tag)
	require.Equal(t, &bbox, r.Context.Bbox)
	require.Equal(t, conn, r.Context.Conn)
	require.NotEmpty(t, r.Context.RequestID)
}
