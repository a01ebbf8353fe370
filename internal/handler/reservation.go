package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/service"
)

// Allocator is the reservation engine as seen by the HTTP layer.
type Allocator interface {
	Create(ctx context.Context, req service.CreateRequest) (*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation, patch model.ReservationPatch) (*model.Reservation, error)
	CheckExisting(ctx context.Context, ownerID uint64, date time.Time, service string) (*model.Reservation, error)
}

// WeekReporter produces the seven-day availability report.
type WeekReporter interface {
	WeekAvailability(ctx context.Context, start time.Time) (service.WeekAvailability, error)
}

// ReservationAdmin reads and removes stored reservations.
type ReservationAdmin interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// CachePurger invalidates cached availability reports.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// ReservationHandler serves the reservation endpoints.  Successful writes
// publish an audit event and purge the response cache; both are best
// effort and only logged on failure.
type ReservationHandler struct {
	Allocator    Allocator
	Week         WeekReporter
	Reservations ReservationAdmin
	Events       queue.Publisher
	Cache        CachePurger
	Log          *logger.Logger
	Now          func() time.Time
}

func NewReservationHandler(alloc Allocator, week WeekReporter, reservations ReservationAdmin, events queue.Publisher, cache CachePurger, log *logger.Logger) *ReservationHandler {
	if alloc == nil || week == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationHandler{
		Allocator:    alloc,
		Week:         week,
		Reservations: reservations,
		Events:       events,
		Cache:        cache,
		Log:          log,
		Now:          time.Now,
	}
}

// ----- DTOs -----

type createReservationReq struct {
	Date      string  `json:"date" validate:"required"`
	Service   string  `json:"service" validate:"max=50"`
	PartySize int     `json:"party_size" validate:"required,min=1"`
	UserID    *uint64 `json:"user_id"`
}

type checkReservationReq struct {
	Date    string `json:"date" validate:"required"`
	Service string `json:"service" validate:"required,max=50"`
}

// updateReservationReq distinguishes an absent table_ids (nil) from an
// explicit empty list.
type updateReservationReq struct {
	Date      *string   `json:"date"`
	Service   *string   `json:"service" validate:"omitempty,max=50"`
	PartySize *int      `json:"party_size" validate:"omitempty,min=1"`
	TableIDs  *[]uint64 `json:"table_ids"`
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339, converted to UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(model.DateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// Availability handles GET /v1/reservations/availability?start_date=YYYY-MM-DD.
// The start date defaults to today (UTC).
func (h *ReservationHandler) Availability(c echo.Context) error {
	start := h.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.ParseInLocation(model.DateLayout, raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		start = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	week, err := h.Week.WeekAvailability(ctx, start)
	if err != nil {
		h.Log.Error(ctx, err).Msg("week availability failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
	}
	return c.JSON(http.StatusOK, week)
}

// Create handles POST /v1/reservations.  The owner is the authenticated
// caller when a token is sent, else the optional user_id body field, else
// the booking is anonymous.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	owner := req.UserID
	if uid, ok := middleware.UserID(c); ok {
		owner = &uid
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Allocator.Create(ctx, service.CreateRequest{
		Date:      date,
		Service:   req.Service,
		PartySize: req.PartySize,
		OwnerID:   owner,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	h.afterWrite(ctx, queue.ActionCreated, res)
	return c.JSON(http.StatusCreated, res)
}

// Check handles POST /v1/reservations/check for the authenticated caller.
func (h *ReservationHandler) Check(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	res, err := h.Allocator.CheckExisting(c.Request().Context(), uid, date, req.Service)
	if err != nil {
		return h.writeError(c, err)
	}
	if res == nil {
		return c.JSON(http.StatusOK, echo.Map{"exists": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": true, "reservation": res})
}

// List handles GET /v1/reservations (admin).  Optional filters: date,
// service, limit, offset.
func (h *ReservationHandler) List(c echo.Context) error {
	var f repository.ReservationFilter
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.ParseInLocation(model.DateLayout, raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		f.Date = &d
	}
	f.Service = c.QueryParam("service")
	f.Limit = queryInt(c, "limit", 50, 1, 500)
	f.Offset = queryInt(c, "offset", 0, 0, 1<<31-1)

	list, err := h.Reservations.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error(c.Request().Context(), err).Msg("list reservations failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if list == nil {
		list = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

func queryInt(c echo.Context, name string, def, min, max int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Get handles GET /v1/reservations/:id.  Admins see every reservation,
// other callers only their own.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	if middleware.Role(c) != model.RoleAdmin {
		uid, _ := middleware.UserID(c)
		if res.OwnerID == nil || *res.OwnerID != uid {
			return h.writeError(c, repository.ErrForbidden)
		}
	}
	return c.JSON(http.StatusOK, res)
}

// Update handles PUT/PATCH /v1/reservations/:id (admin).
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var patch model.ReservationPatch
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		patch.Date = &d
	}
	patch.Service = req.Service
	patch.PartySize = req.PartySize
	if req.TableIDs != nil {
		patch.TableIDs = append([]uint64{}, (*req.TableIDs)...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	updated, err := h.Allocator.Update(ctx, res, patch)
	if err != nil {
		return h.writeError(c, err)
	}
	h.afterWrite(ctx, queue.ActionUpdated, updated)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/reservations/:id (admin).  Freed tables are
// not re-offered to anyone.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.Reservations.Delete(ctx, id); err != nil {
		return h.writeError(c, err)
	}
	h.afterWrite(ctx, queue.ActionDeleted, res)
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) afterWrite(ctx context.Context, action string, res *model.Reservation) {
	if h.Cache != nil {
		if err := h.Cache.Purge(ctx); err != nil {
			h.Log.Warn(ctx).Err(err).Msg("cache purge failed")
		}
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := h.Events.Publish(pubCtx, queue.NewReservationEvent(action, res, h.Now())); err != nil {
		h.Log.Warn(ctx).Err(err).Uint64("id", res.ID).Str("action", action).Msg("publish reservation event failed")
	}
}

// writeError maps domain errors to HTTP responses.
func (h *ReservationHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityExhausted):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrCapacityExhausted.Error()})
	case errors.Is(err, service.ErrDuplicateReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrDuplicateReservation.Error()})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrLockTimeout):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, retry later"})
	default:
		h.Log.Error(c.Request().Context(), err).Msg("reservation request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
