package studio

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boxoffice/internal/auth"
	"boxoffice/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudioRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, store, _ := newTestService(t)
	store.maps["7f9c2a4e-8f0b-4a8e-9d55-0c1f2b3a4d5e"] = store.maps["evt"]

	issuer := auth.NewIssuer(config.JWTConfig{Secret: "test-secret", JWTExpiresIn: time.Hour, ResumeTTL: time.Hour})
	engine := gin.New()
	SetupStudioRoutes(engine.Group("/api/v1"), NewController(svc), issuer)

	admin, err := issuer.IssueAccessToken("admin-1", "admin@boxoffice.test", auth.RoleAdmin)
	require.NoError(t, err)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/admin/layouts/sessions"+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "", `{"eventId":"7f9c2a4e-8f0b-4a8e-9d55-0c1f2b3a4d5e"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var opened struct {
		Data SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	sid := "/" + opened.Data.ID

	assert.Equal(t, http.StatusConflict, do(http.MethodPost, sid+"/draft/rows", "").Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, sid+"/draft", `{"colorIndex":1}`).Code)
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, sid+"/draft", `{"colorIndex":1}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, sid+"/draft/rows/generate", `{"count":0,"seatsPerRow":10,"columns":2}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, sid+"/draft/rows/generate", `{"count":2,"seatsPerRow":5,"columns":1}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, sid+"/draft/rows/move", `{"index":0,"direction":1}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, sid+"/draft/rows/move", `{"index":0,"direction":3}`).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, sid+"/draft/rows/ghost", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, sid+"/draft/commit", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, sid+"/draft", `{"name":"VIP","price":350}`).Code)

	rec = do(http.MethodPost, sid+"/draft/commit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var committed struct {
		Data SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &committed))
	require.Len(t, committed.Data.Preview.Sectors, 1)
	rowID := committed.Data.Preview.Sectors[0].Rows[0].Row.ID

	assert.Equal(t, http.StatusOK, do(http.MethodPut, sid+"/special-seats/"+rowID+"/0", `{"status":"sold"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, sid+"/special-seats/"+rowID+"/x", `{"status":"sold"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPut, sid+"/rows/"+rowID, `{"seats":6,"columns":2}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, sid+"/export", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, sid+"/save", "").Code)
	assert.Equal(t, 11, store.updates[0].SeatMapConfig.SectorTotal("VIP"))

	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, sid+"/sectors/Balcony", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, sid, "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, sid, "").Code)
}
