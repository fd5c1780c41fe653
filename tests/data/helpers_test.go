package data

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/pitfacts/internal/clients/sec"
	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/classify"
	"github.com/bobmcallan/pitfacts/internal/services/enrich"
	"github.com/bobmcallan/pitfacts/internal/services/pipeline"
	"github.com/bobmcallan/pitfacts/internal/storage"
	tcommon "github.com/bobmcallan/pitfacts/tests/common"
)

var backends = []string{common.BackendSurrealDB, common.BackendPostgres}

// testManager opens a StorageManager for backend on a fresh database.
func testManager(t *testing.T, backend string) interfaces.StorageManager {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage.Backend = backend
	switch backend {
	case common.BackendSurrealDB:
		cfg.Storage.SurrealDB = tcommon.SurrealDBConfig(t, "pitfacts_data_test")
	case common.BackendPostgres:
		cfg.Storage.Postgres.DSN = tcommon.CreatePostgresDatabase(t)
	}

	mgr, err := storage.NewStorageManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err, "create %s storage manager", backend)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// secServer serves testdata/ in the shape of data.sec.gov and www.sec.gov.
type secServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newSECServer(t *testing.T) *secServer {
	t.Helper()
	s := &secServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		var file string
		switch {
		case r.URL.Path == "/files/company_tickers.json":
			file = "company_tickers.json"
		case strings.HasPrefix(r.URL.Path, "/api/xbrl/companyfacts/"):
			file = strings.TrimPrefix(r.URL.Path, "/api/xbrl/companyfacts/")
		case strings.HasPrefix(r.URL.Path, "/submissions/"):
			file = "submissions_" + strings.TrimPrefix(r.URL.Path, "/submissions/")
		}

		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		data, err := os.ReadFile(filepath.Join("testdata", filepath.Base(file)))
		if file == "" || err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *secServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *secServer) client() *sec.Client {
	return sec.NewClient("pitfacts-test test@example.com",
		sec.WithBaseURL(s.URL),
		sec.WithTickersURL(s.URL+"/files/company_tickers.json"),
		sec.WithRetry(0, time.Millisecond),
		sec.WithRateLimit(100),
		sec.WithLogger(common.NewSilentLogger()),
	)
}

func newPipeline(t *testing.T, mgr interfaces.StorageManager, client interfaces.SECClient) *pipeline.Service {
	t.Helper()
	sicMapper, err := enrich.NewSICMapper(enrich.DefaultSICRanges())
	require.NoError(t, err)
	classifier := classify.NewCache(classify.MustNew(classify.DefaultKeywordTables()))
	return pipeline.NewService(mgr, client, classifier, sicMapper, 2, common.NewSilentLogger())
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
