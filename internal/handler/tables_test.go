package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/table-reservation/internal/model"
)

type stubTables struct {
	tables []model.Table
	err    error
}

func (s stubTables) FindAll(context.Context) ([]model.Table, error) { return s.tables, s.err }

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestListTables(t *testing.T) {
	e := echo.New()
	e.GET("/ok", NewTableHandler(stubTables{tables: []model.Table{{ID: 1, TableNumber: 1, Capacity: 2}}}).List)
	e.GET("/fail", NewTableHandler(stubTables{err: errors.New("boom")}).List)

	rec := call(e, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tables":[{"id":1,"table_number":1,"capacity":2}]}`, rec.Body.String())
	assert.Equal(t, http.StatusInternalServerError, call(e, http.MethodGet, "/fail", "").Code)
}

func TestHealthAndReady(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	e.GET("/ready", Ready(stubPinger{}))
	e.GET("/down", Ready(stubPinger{err: errors.New("refused")}))

	assert.Equal(t, "ok", call(e, http.MethodGet, "/healthz", "").Body.String())
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, call(e, http.MethodGet, "/down", "").Code)
}
