package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/hazard"
	"lintang/neuracity/pkg/server"
	"lintang/neuracity/pkg/server/rest"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNavigationService struct {
	gotReq    datastructure.RouteRequest
	res       datastructure.RouteResult
	err       error
	stats     hazard.Stats
	refreshed int
}

func (f *fakeNavigationService) PlanRoute(ctx context.Context, req datastructure.RouteRequest) (datastructure.RouteResult, error) {
	f.gotReq = req
	return f.res, f.err
}

func (f *fakeNavigationService) HazardStats(ctx context.Context) (hazard.Stats, error) {
	return f.stats, f.err
}

func (f *fakeNavigationService) RefreshHazards() {
	f.refreshed++
}

func newRouter(t *testing.T, svc rest.NavigationService) (*chi.Mux, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(rest.PromeHttpMiddleware(m))
	rest.NavigatorRouter(r, svc, m)
	return r, reg
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPlanRouteHandler(t *testing.T) {
	svc := &fakeNavigationService{res: datastructure.RouteResult{
		Path:        []datastructure.Coordinate{{Lat: 33.749, Lon: -84.388}, {Lat: 33.7525, Lon: -84.3915}},
		Polyline:    "encoded",
		DistanceKm:  0.51,
		EtaMinutes:  0.61,
		MetricType:  datastructure.MetricCO2Kg,
		MetricValue: 0.077,
		Explanation: "Eco route that matches the shortest path, estimated 0.08 kg CO2.",
		Mode:        datastructure.ModeEco,
	}}
	r, reg := newRouter(t, svc)

	rec := do(r, http.MethodPost, "/api/navigations/plan",
		`{"origin":{"lat":33.749,"lng":-84.388},"destination":{"lat":33.7525,"lng":-84.3915},"mode":"eco"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, datastructure.RouteRequest{
		Origin:      datastructure.NewCoordinate(33.749, -84.388),
		Destination: datastructure.NewCoordinate(33.7525, -84.3915),
		Mode:        datastructure.ModeEco,
	}, svc.gotReq)

	var resp rest.PlanRouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "eco", resp.Mode)
	assert.Equal(t, "co2_kg", resp.MetricType)
	assert.Len(t, resp.Path, 2)
	assert.Equal(t, "encoded", resp.Polyline)
	assert.Contains(t, rec.Body.String(), `"lng":-84.388`)

	assert.Equal(t, 1.0, routePlanCount(t, reg, "eco", "ok"))
}

func routePlanCount(t *testing.T, reg *prometheus.Registry, mode, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "neuracity_route_plan_count" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["mode"] == mode && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestPlanRouteHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing destination", `{"origin":{"lat":33.749,"lng":-84.388},"mode":"drive"}`},
		{"latitude out of range", `{"origin":{"lat":91,"lng":-84.388},"destination":{"lat":33.75,"lng":-84.39},"mode":"drive"}`},
		{"missing longitude", `{"origin":{"lat":33.749},"destination":{"lat":33.75,"lng":-84.39},"mode":"drive"}`},
		{"unknown mode", `{"origin":{"lat":33.749,"lng":-84.388},"destination":{"lat":33.75,"lng":-84.39},"mode":"fly"}`},
		{"malformed json", `{"origin":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNavigationService{}
			r, _ := newRouter(t, svc)

			rec := do(r, http.MethodPost, "/api/navigations/plan", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp rest.ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, datastructure.CodeInvalidInput, resp.Reason)
			assert.Equal(t, datastructure.RouteRequest{}, svc.gotReq, "service must not be called")
		})
	}
}

func TestPlanRouteHandlerErrorMapping(t *testing.T) {
	body := `{"origin":{"lat":33.749,"lng":-84.388},"destination":{"lat":33.75,"lng":-84.39},"mode":"drive"}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "snap failure",
			err:        server.WrapErrorf(&datastructure.SnapFailureError{MaxDistanceM: 300, NearestM: 5000}, server.ErrNotFound, "origin is not covered"),
			wantStatus: http.StatusNotFound,
			wantReason: datastructure.CodeSnapFailed,
		},
		{
			name:       "no path",
			err:        server.WrapErrorf(&datastructure.NoPathFoundError{From: 0, To: 3}, server.ErrUnprocessable, "no route"),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: datastructure.CodeNoPath,
		},
		{
			name:       "search timeout",
			err:        server.WrapErrorf(&datastructure.SearchTimeoutError{Expanded: 10, Elapsed: time.Second}, server.ErrTimeout, "too slow"),
			wantStatus: http.StatusGatewayTimeout,
			wantReason: datastructure.CodeSearchTimeout,
		},
		{
			name:       "graph not loaded",
			err:        server.WrapErrorf(nil, server.ErrUnavailable, "road network is not loaded yet"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "untyped error",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t, &fakeNavigationService{err: tt.err})

			rec := do(r, http.MethodPost, "/api/navigations/plan", body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp rest.ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantReason, resp.Reason)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, server.MessageInternalServerError, resp.ErrorText)
			}
		})
	}
}

func TestHazardEndpoints(t *testing.T) {
	svc := &fakeNavigationService{stats: hazard.Stats{Segments: 12, TrafficSamples: 3, DegradedProviders: []string{"noise"}}}
	r, _ := newRouter(t, svc)

	rec := do(r, http.MethodGet, "/api/navigations/hazards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats hazard.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.Segments)
	assert.Equal(t, []string{"noise"}, stats.DegradedProviders)

	rec = do(r, http.MethodPost, "/api/navigations/hazards/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, svc.refreshed)

	rec = do(r, http.MethodGet, "/api/navigations/hello", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
