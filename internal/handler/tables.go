package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TableLister lists the table catalog.
type TableLister interface {
	FindAll(ctx context.Context) ([]model.Table, error)
}

type TableHandler struct {
	Tables TableLister
}

func NewTableHandler(tables TableLister) *TableHandler { return &TableHandler{Tables: tables} }

// List handles GET /v1/tables.
func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	tables, err := h.Tables.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tables failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}
