package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	md "github.com/rateflow/rateflow/pkg/middleware"
	"github.com/rateflow/rateflow/pkg/validate"
	"github.com/rateflow/rateflow/rating/internal/errs"
	ratingModel "github.com/rateflow/rateflow/rating/internal/model"
)

type Handler struct {
	ratingSvc RatingService
	log       *zap.Logger
}

func New(ratingSvc RatingService, log *zap.Logger) *Handler {
	return &Handler{
		ratingSvc: ratingSvc,
		log:       log,
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
	api.POST("/ratings", h.CreateRating)
	api.GET("/providers/:providerId/rating", h.GetProviderRating)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) CreateRating(c echo.Context) error {
	ctx := c.Request().Context()

	var req ratingModel.CreateRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	rating, err := h.ratingSvc.CreateRating(ctx, req)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidScore) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rating)
}

func (h *Handler) GetProviderRating(c echo.Context) error {
	ctx := c.Request().Context()

	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid providerId")
	}

	rating, err := h.ratingSvc.GetProviderRating(ctx, providerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rating)
}
