package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/ocr/gosseract"
	"github.com/joseph-ayodele/paper-summarizer/internal/storage"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.DefaultConfig(t.TempDir())
	cfg.LLM.APIKey = "test-key"
	return cfg
}

func TestNewBuildsGraph(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil, Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Runner)
	assert.NotNil(t, a.Extractor)
	assert.NotNil(t, a.Metrics)
	assert.IsType(t, &storage.LocalStore{}, a.Store)
}

func TestNewSkipLLM(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil, Options{SkipLLM: true})
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Runner)
	assert.NotNil(t, a.Acquirer)
	assert.Nil(t, a.Metrics)
}

func TestUnknownComponentsAreConfigErrors(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.OCR.Engine = "abacus"
	_, err := NewAcquirer(ctx, cfg, nil)
	assert.Equal(t, common.KindConfig, common.KindOf(err))

	cfg = testConfig(t)
	cfg.Storage.Backend = "floppy"
	_, err = NewStore(ctx, cfg, nil)
	assert.Equal(t, common.KindConfig, common.KindOf(err))

	cfg = testConfig(t)
	cfg.LLM.Provider = "oracle"
	_, _, err = NewCompleter(ctx, cfg, nil)
	assert.Equal(t, common.KindConfig, common.KindOf(err))

	cfg = testConfig(t)
	cfg.Storage.Backend = "floppy"
	_, err = New(ctx, cfg, nil, Options{})
	assert.Equal(t, common.KindConfig, common.KindOf(err))
}

func TestGosseractEngineWithoutBuildTag(t *testing.T) {
	if gosseract.Available {
		t.Skip("built with the gosseract tag")
	}
	cfg := testConfig(t)
	cfg.OCR.Engine = "gosseract"
	_, err := NewAcquirer(context.Background(), cfg, nil)
	assert.Equal(t, common.KindConfig, common.KindOf(err))
}

func TestNewStoreMinioUsesConfiguredRegion(t *testing.T) {
	var (
		mu    sync.Mutex
		auths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Method+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Storage.Backend = "minio"
	cfg.Storage.MinioEndpoint = strings.TrimPrefix(srv.URL, "http://")
	cfg.Storage.MinioAccessKey = "ak"
	cfg.Storage.MinioSecretKey = "sk"
	cfg.Storage.MinioRegion = "ap-south-1"

	s, err := NewStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.MinioStore{}, s)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, auths)
	assert.Contains(t, auths[0], "/ap-south-1/s3/aws4_request")
}
