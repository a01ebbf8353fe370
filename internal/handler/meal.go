package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// MealStore reads and writes the menu.
type MealStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	List(ctx context.Context, categoryIDs []uint64) ([]model.Meal, error)
	GetByID(ctx context.Context, id uint64) (*model.Meal, error)
	Save(ctx context.Context, m *model.Meal) error
	Delete(ctx context.Context, id uint64) error
}

// MealHandler serves the menu: public reads, admin writes.
type MealHandler struct {
	Meals MealStore
	Log   *logger.Logger
}

func NewMealHandler(meals MealStore, log *logger.Logger) *MealHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &MealHandler{Meals: meals, Log: log}
}

type createMealReq struct {
	Name        string          `json:"name" validate:"required,max=50"`
	Description string          `json:"description" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price"`
	Picture     string          `json:"picture" validate:"max=255"`
	CategoryIDs []uint64        `json:"category_ids"`
}

type updateMealReq struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=255"`
	Price       *decimal.Decimal `json:"price"`
	Picture     *string          `json:"picture" validate:"omitempty,max=255"`
	CategoryIDs *[]uint64        `json:"category_ids"`
}

func categoriesOf(ids []uint64) []model.Category {
	out := make([]model.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Category{ID: id})
	}
	return out
}

// categoryFilter reads ?categories=1&categories=2, also accepting the
// categories[] and comma separated forms.
func categoryFilter(c echo.Context) ([]uint64, bool) {
	q := c.QueryParams()
	raw := append(append([]string{}, q["categories"]...), q["categories[]"]...)
	var ids []uint64
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

// Categories handles GET /v1/categories.
func (h *MealHandler) Categories(c echo.Context) error {
	cats, err := h.Meals.ListCategories(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

// List handles GET /v1/meals, optionally filtered by category.
func (h *MealHandler) List(c echo.Context) error {
	ids, ok := categoryFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categories"})
	}
	meals, err := h.Meals.List(c.Request().Context(), ids)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"meals": meals})
}

// Get handles GET /v1/meals/:id.
func (h *MealHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Meals.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Create handles POST /v1/meals (admin).
func (h *MealHandler) Create(c echo.Context) error {
	var req createMealReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !model.ValidPrice(req.Price) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}
	m := &model.Meal{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Picture:     strings.TrimSpace(req.Picture),
		Categories:  categoriesOf(req.CategoryIDs),
	}
	if err := h.Meals.Save(c.Request().Context(), m); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Update handles PUT/PATCH /v1/meals/:id (admin).  Absent fields are kept;
// a present category_ids replaces the category set.
func (h *MealHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateMealReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Price != nil && !model.ValidPrice(*req.Price) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}

	ctx := c.Request().Context()
	m, err := h.Meals.GetByID(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		m.Price = *req.Price
	}
	if req.Picture != nil {
		m.Picture = strings.TrimSpace(*req.Picture)
	}
	if req.CategoryIDs != nil {
		m.Categories = categoriesOf(*req.CategoryIDs)
	}
	if err := h.Meals.Save(ctx, m); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /v1/meals/:id (admin).
func (h *MealHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Meals.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MealHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrMealNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "meal not found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	default:
		h.Log.Error(c.Request().Context(), err).Msg("menu request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
