package grid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	gridmemory "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/memory"
	gridxlsx "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/xlsx"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, config.GridConfig{Backend: config.GridBackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &gridmemory.Store{}, s)

	s, err = NewStore(ctx, config.GridConfig{Backend: config.GridBackendXLSX, XLSXPath: filepath.Join(t.TempDir(), "g.xlsx"), Sheet: "Steps"})
	require.NoError(t, err)
	assert.IsType(t, &gridxlsx.Store{}, s)

	_, err = NewStore(ctx, config.GridConfig{Backend: config.GridBackendSheets, CredentialsPath: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	_, err = NewStore(ctx, config.GridConfig{Backend: "csv"})
	assert.Error(t, err)
}

func TestNewGridModule(t *testing.T) {
	cfg := &config.Config{Grid: config.GridConfig{Backend: config.GridBackendMemory}}
	m, err := NewGridModule(context.Background(), cfg, observability.NoOp(), []string{"🥇"}, nil)
	require.NoError(t, err)
	require.NotNil(t, m.Syncer)

	require.NoError(t, m.Syncer.WriteCell(context.Background(), "Vasya", mustDate(t), 100))
	values, err := m.Store.Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100", values[1][1])
}

func TestModule_RegisterRoutes(t *testing.T) {
	cfg := &config.Config{Grid: config.GridConfig{Backend: config.GridBackendMemory}}
	m, err := NewGridModule(context.Background(), cfg, observability.NoOp(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Syncer.WriteCell(context.Background(), "Vasya", mustDate(t), 12000))

	r := chi.NewRouter()
	m.RegisterRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/grid/01.02.2026", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"identity":"Vasya"`)
}

func mustDate(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", "2026-02-01")
	require.NoError(t, err)
	return d
}
