package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/hazard"
	"lintang/neuracity/pkg/server"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	PlanRoute(ctx context.Context, req datastructure.RouteRequest) (datastructure.RouteResult, error)
	HazardStats(ctx context.Context) (hazard.Stats, error)
	RefreshHazards()
}

type NavigationHandler struct {
	svc          NavigationService
	promeMetrics *metrics
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *metrics) {
	handler := &NavigationHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigations", func(r chi.Router) {
			r.Post("/plan", handler.planRoute)
			r.Get("/hazards", handler.hazardStats)
			r.Post("/hazards/refresh", handler.refreshHazards)
			r.Get("/hello", handler.Hello)
		})
	})
}

// LatLng model info
//
//	@Description	koordinat WGS84
type LatLng struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

func (l LatLng) coordinate() datastructure.Coordinate {
	return datastructure.NewCoordinate(*l.Lat, *l.Lng)
}

// PlanRouteRequest model info
//
//	@Description	request body untuk route planning antara origin dan destination dengan mode drive, eco, atau quiet_walk
type PlanRouteRequest struct {
	Origin      *LatLng `json:"origin" validate:"required"`
	Destination *LatLng `json:"destination" validate:"required"`
	Mode        string  `json:"mode" validate:"required,oneof=drive eco quiet_walk"`
}

func (s *PlanRouteRequest) Bind(r *http.Request) error {
	if s.Origin == nil || s.Destination == nil {
		return errors.New("invalid request: origin and destination are required")
	}
	return nil
}

// PlanRouteResponse model info
//
//	@Description	response body route planning
type PlanRouteResponse struct {
	Path        []datastructure.Coordinate `json:"path"`
	Polyline    string                     `json:"polyline"`
	DistanceKm  float64                    `json:"distance_km"`
	EtaMinutes  float64                    `json:"eta_minutes"`
	MetricType  string                     `json:"metric_type"`
	MetricValue float64                    `json:"metric_value"`
	Explanation string                     `json:"explanation"`
	Mode        string                     `json:"mode"`
}

func NewPlanRouteResponse(res datastructure.RouteResult) *PlanRouteResponse {
	path := res.Path
	if path == nil {
		path = []datastructure.Coordinate{}
	}
	return &PlanRouteResponse{
		Path:        path,
		Polyline:    res.Polyline,
		DistanceKm:  res.DistanceKm,
		EtaMinutes:  res.EtaMinutes,
		MetricType:  res.MetricType,
		MetricValue: res.MetricValue,
		Explanation: res.Explanation,
		Mode:        string(res.Mode),
	}
}

// planRoute
//
//	@Summary		route planning multi-modal dengan hazard (traffic, noise, incident).
//	@Description	route planning antara 2 titik. mode drive menghindari incident, eco menghindari kemacetan, quiet_walk menghindari kebisingan.
//	@Tags			navigations
//	@Param			body	body	PlanRouteRequest	true	"request body route planning"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/plan [post]
//	@Success		200	{object}	PlanRouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
//	@Failure		504	{object}	ErrResponse
func (h *NavigationHandler) planRoute(w http.ResponseWriter, r *http.Request) {
	data := &PlanRouteRequest{}
	if err := render.Bind(r, data); err != nil {
		h.promeMetrics.RoutePlanCount.WithLabelValues(data.Mode, datastructure.CodeInvalidInput).Inc()
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		h.promeMetrics.RoutePlanCount.WithLabelValues(data.Mode, datastructure.CodeInvalidInput).Inc()
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	res, err := h.svc.PlanRoute(r.Context(), datastructure.RouteRequest{
		Origin:      data.Origin.coordinate(),
		Destination: data.Destination.coordinate(),
		Mode:        datastructure.Mode(data.Mode),
	})
	if err != nil {
		h.promeMetrics.RoutePlanCount.WithLabelValues(data.Mode, outcome(err)).Inc()
		render.Render(w, r, ErrChi(err))
		return
	}

	h.promeMetrics.RoutePlanCount.WithLabelValues(data.Mode, "ok").Inc()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewPlanRouteResponse(res))
}

// hazardStats
//
//	@Summary		ringkasan hazard snapshot yang sedang dipakai route planner.
//	@Tags			navigations
//	@Produce		application/json
//	@Router			/navigations/hazards [get]
//	@Success		200	{object}	hazard.Stats
//	@Failure		503	{object}	ErrResponse
func (h *NavigationHandler) hazardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.HazardStats(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

// refreshHazards
//
//	@Summary		paksa hazard snapshot dibangun ulang di request berikutnya.
//	@Tags			navigations
//	@Router			/navigations/hazards/refresh [post]
//	@Success		202
func (h *NavigationHandler) refreshHazards(w http.ResponseWriter, r *http.Request) {
	h.svc.RefreshHazards()
	w.WriteHeader(http.StatusAccepted)
}

func (h *NavigationHandler) Hello(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"message": "hello from neuracity route planner"})
}

// outcome label metric route_plan_count.
func outcome(err error) string {
	if code := datastructure.ErrorCode(err); code != "" {
		return code
	}
	return "error"
}

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`           // user-level status message
	AppCode       int64    `json:"code,omitempty"`   // application-specific error code
	Reason        string   `json:"reason,omitempty"` // reason code engine: invalid_input, snap_failed, no_path, search_timeout
	ErrorText     string   `json:"error,omitempty"`  // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		Reason:         datastructure.CodeInvalidInput,
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		Reason:         datastructure.CodeInvalidInput,
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusBadRequest:
		statusText = "Bad request."
	case http.StatusUnprocessableEntity:
		statusText = "No route found."
	case http.StatusServiceUnavailable:
		statusText = "Service unavailable."
	case http.StatusGatewayTimeout:
		statusText = "Search timed out."
	default:
		statusText = "Error."
	}

	errText := err.Error()
	if getStatusCode(err) == http.StatusInternalServerError {
		errText = server.MessageInternalServerError
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		Reason:         datastructure.ErrorCode(err),
		ErrorText:      errText,
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case server.ErrInternalServerError:
		return http.StatusInternalServerError
	case server.ErrNotFound:
		return http.StatusNotFound
	case server.ErrBadParamInput:
		return http.StatusBadRequest
	case server.ErrUnprocessable:
		return http.StatusUnprocessableEntity
	case server.ErrTimeout:
		return http.StatusGatewayTimeout
	case server.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
