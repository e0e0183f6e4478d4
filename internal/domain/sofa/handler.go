package sofa

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the scoring engine over HTTP. The inline endpoints score
// relations supplied in the request body; the cohort endpoints score the
// persisted relations through the service.
type Handler struct {
	svc *Service
	cfg Config
}

func NewHandler(svc *Service, cfg Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/score", h.ScoreInline)
	api.POST("/score/daily", h.ScoreInlineDaily)
	api.GET("/cohort/score", h.ScoreCohort)
	api.GET("/cohort/score/daily", h.ScoreCohortDaily)
}

func (h *Handler) ScoreInline(c echo.Context) error {
	var in Inputs
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	res, err := ScoreCohort(&in, h.cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ScoreInlineDaily(c echo.Context) error {
	var in Inputs
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	res, err := ScoreDaily(&in, h.cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ScoreCohort(c echo.Context) error {
	res, err := h.svc.ScoreCohort(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ScoreCohortDaily(c echo.Context) error {
	res, err := h.svc.ScoreDaily(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
