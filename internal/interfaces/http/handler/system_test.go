package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping() error { return s.err }

func newSystemEngine(db Pinger) *gin.Engine {
	engine := gin.New()
	NewSystemHandler(db).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSystemInfo(t *testing.T) {
	engine := newSystemEngine(stubPinger{})

	w := doRequest(engine, http.MethodGet, "/api/v1/system/info")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Storefront Backend API", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestSystemHealth(t *testing.T) {
	engine := newSystemEngine(stubPinger{})

	w := doRequest(engine, http.MethodGet, "/api/v1/system/health")

	require.Equal(t, http.StatusOK, w.Code)
}

func TestSystemHealth_DatabaseDown(t *testing.T) {
	engine := newSystemEngine(stubPinger{err: errors.New("connection refused")})

	w := doRequest(engine, http.MethodGet, "/api/v1/system/health")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Data.Status)
	assert.Equal(t, "unreachable", resp.Data.Database)
}
