package handler

import (
	"net/http"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// dashboardRequest builds the service request from the path, the query string
// and the authenticated token. month is 0-indexed like the front-end's.
func dashboardRequest(r *http.Request, svc *service.DashboardService) (service.DashboardRequest, error) {
	req := service.DashboardRequest{
		AccountID: chi.URLParam(r, "accountId"),
		Token:     TokenFromContext(r.Context()),
		Subject:   SubjectFromContext(r.Context()),
		Refresh:   queryBool(r, "refresh"),
	}

	month, err := queryInt(r, "month")
	if err != nil {
		return req, err
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return req, err
	}
	if month != nil || year != nil {
		w := domain.WindowOf(svc.Today())
		if month != nil {
			w.Month = *month
		}
		if year != nil {
			w.Year = *year
		}
		req.Window = &w
	}

	if req.Days, err = queryInt(r, "days"); err != nil {
		return req, err
	}
	if req.MonthsBack, err = queryInt(r, "back"); err != nil {
		return req, err
	}
	if req.MonthsForward, err = queryInt(r, "forward"); err != nil {
		return req, err
	}
	return req, nil
}

// ============================================================
// GET /v1/accounts/{accountId}/dashboard
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("account.id", req.AccountID))

		dash, err := svc.BuildDashboard(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

func summaryHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard/summary")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		view, err := svc.Summary(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func categoriesHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard/categories")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		view, err := svc.Categories(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func dueHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard/due")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		tl, err := svc.TrafficLight(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tl)
	}
}

func timelineHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard/timeline")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		days, err := svc.Timeline(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": days})
	}
}

func annualHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/dashboard/annual")
		defer span.End()

		req, err := dashboardRequest(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		months, err := svc.Annual(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"months": months})
	}
}
