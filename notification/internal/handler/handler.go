package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rateflow/rateflow/notification/internal/service"
	md "github.com/rateflow/rateflow/pkg/middleware"
	"github.com/rateflow/rateflow/pkg/validate"
)

type Handler struct {
	notificationSvc NotificationService
	log             *zap.Logger
}

func New(notificationSvc NotificationService, log *zap.Logger) *Handler {
	return &Handler{
		notificationSvc: notificationSvc,
		log:             log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/notifications/:providerId", h.GetNotifications)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetNotifications returns one page of unread notifications and marks them
// read in the same call. An empty page is a 200, not a 404.
func (h *Handler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid providerId")
	}

	page, err := pagingParam(c, "page", service.DefaultPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a positive integer")
	}
	pageSize, err := pagingParam(c, "pageSize", service.DefaultPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "pageSize must be a positive integer")
	}

	res, err := h.notificationSvc.GetNotifications(ctx, providerID, page, pageSize)
	if err != nil {
		h.log.Error("get notifications", zap.String("providerId", providerID.String()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, res)
}

func pagingParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, echo.ErrBadRequest
	}
	return v, nil
}
