package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
)

func TestOilChangeHandler_CRUDAndStatus(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup("oil@mail.com", "secret1")

	rec := env.do(call{method: http.MethodGet, path: "/api/v1/oil-change/status", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"unknown","daysSince":0,"daysRemaining":0}`, rec.Body.String())

	changed := time.Now().UTC().AddDate(0, 0, -160).Truncate(time.Second)
	rec = env.do(call{method: http.MethodPost, path: "/api/v1/oil-change", token: token, body: gin.H{
		"carModel":       "Renault Clio 4",
		"changeDate":     changed.Format(time.RFC3339),
		"kilometersDone": 85000,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Record entities.OilChangeRecord `json:"record"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "Renault Clio 4", created.Record.CarModel.String)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change/status", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var status entities.OilChangeStatus
	decode(t, rec, &status)
	assert.Equal(t, entities.OilStatusWarning, status.Status)
	assert.Equal(t, 160, status.DaysSince)
	assert.Equal(t, 20, status.DaysRemaining)
	assert.Nil(t, status.KmSince)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change/status?currentKm=90100", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &status)
	assert.Equal(t, entities.OilStatusOverdue, status.Status)
	require.NotNil(t, status.KmSince)
	assert.Equal(t, 5100, *status.KmSince)
	assert.Equal(t, 0, *status.KmRemaining)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change/status?currentKm=-5", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/v1/oil-change/" + created.Record.ID.String()
	rec = env.do(call{method: http.MethodPut, path: path, token: token, body: gin.H{"changeDate": time.Now().UTC().Format(time.RFC3339)}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change/status", token: token})
	decode(t, rec, &status)
	assert.Equal(t, entities.OilStatusGood, status.Status)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Records []entities.OilChangeRecord `json:"records"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Records, 1)

	rec = env.do(call{method: http.MethodDelete, path: path, token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(call{method: http.MethodDelete, path: path, token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domainerrors.CodeRecordNotFound, errorCode(t, rec))
}

func TestOilChangeHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup("oilv@mail.com", "secret1")

	rec := env.do(call{method: http.MethodPost, path: "/api/v1/oil-change", token: token, body: gin.H{"kilometersDone": 100}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(call{method: http.MethodPost, path: "/api/v1/oil-change", token: token, body: gin.H{"changeDate": time.Now().Format(time.RFC3339), "kilometersDone": -1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(call{method: http.MethodPost, path: "/api/v1/oil-change", token: token, body: gin.H{"changeDate": "yesterday", "kilometersDone": 1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOilChangeHandler_RecordsAreScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.signup("own@mail.com", "secret1")
	other, _ := env.signup("oth@mail.com", "secret1")

	rec := env.do(call{method: http.MethodPost, path: "/api/v1/oil-change", token: owner, body: gin.H{
		"changeDate":     time.Now().UTC().Format(time.RFC3339),
		"kilometersDone": 1000,
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Record entities.OilChangeRecord `json:"record"`
	}
	decode(t, rec, &created)
	path := "/api/v1/oil-change/" + created.Record.ID.String()

	rec = env.do(call{method: http.MethodPut, path: path, token: other, body: gin.H{"kilometersDone": 2}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domainerrors.CodeRecordNotFound, errorCode(t, rec))

	rec = env.do(call{method: http.MethodDelete, path: path, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(call{method: http.MethodGet, path: "/api/v1/oil-change", token: other})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[]}`, rec.Body.String())
}
