package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolists/internal/platform/metrics"
	ratelimitmw "todolists/internal/ratelimit/middleware"
	rlmodels "todolists/internal/ratelimit/models"
	"todolists/internal/ratelimit/store/bucket"
	"todolists/internal/todo/handler"
	"todolists/internal/todo/service"
	"todolists/internal/todo/store"
	"todolists/pkg/testutil"
)

func newTestRouter(t *testing.T, health HealthChecker, rateLimit *ratelimitmw.Middleware) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))
	return newRouter(routerDeps{
		logger:         logger,
		handler:        handler.New(svc, logger),
		rateLimit:      rateLimit,
		httpMetrics:    metrics.New(reg),
		gatherer:       reg,
		health:         health,
		requestTimeout: time.Second,
	})
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "a router over the in-memory store", func(t *testing.T) {
		router := newTestRouter(t, nil, nil)

		testutil.When(t, "creating a list and reading it back", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/lists", map[string]string{"name": "Groceries"}))
			require.Equal(t, http.StatusCreated, rr.Code)
			created := testutil.UnmarshalResponse[handler.CreateListResponse](t, rr)

			get := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/lists/"+created.ID))

			testutil.Then(t, "the list is returned with no items", func(t *testing.T) {
				testutil.AssertStatusOK(t, get)
				testutil.AssertJSONContentType(t, get)
				testutil.AssertJSONBody(t, get, `{"id":"`+created.ID+`","name":"Groceries","items":[]}`)
			})
		})

		testutil.When(t, "calling a route with a trailing slash", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/lists/"))

			testutil.Then(t, "it is served like the canonical route", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
			})
			testutil.And(t, "the response carries a request id", func(t *testing.T) {
				assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
			})
		})

		testutil.When(t, "calling GET /health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it reports ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONBody(t, rr, `{"status":"ok"}`)
			})
		})

		testutil.When(t, "calling GET /metrics after traffic", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "request metrics are exposed by route pattern", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.Contains(t, rr.Body.String(), "todolists_http_requests_total")
				assert.Contains(t, rr.Body.String(), `route="/api/lists/{listID}`)
			})
		})

		testutil.When(t, "calling an unknown route", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/unknown"))

			testutil.Then(t, "it responds not found", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusNotFound)
			})
		})
	})
}

func TestRouterHealthUnavailable(t *testing.T) {
	testutil.Given(t, "a store that does not answer", func(t *testing.T) {
		router := newTestRouter(t, func(context.Context) error { return errors.New("no reachable servers") }, nil)

		testutil.When(t, "calling GET /health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it responds service unavailable", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
				testutil.AssertJSONBody(t, rr, `{"status":"unavailable"}`)
			})
		})
	})
}

func TestRouterRateLimitsAPI(t *testing.T) {
	testutil.Given(t, "a limit of two requests per minute", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		limiter := ratelimitmw.NewLimiter(bucket.New(), rlmodels.Limit{RequestsPerWindow: 2, Window: time.Minute})
		router := newTestRouter(t, nil, ratelimitmw.New(limiter, logger))

		testutil.When(t, "a client exceeds it", func(t *testing.T) {
			var last int
			for range 3 {
				req := testutil.NewRequest(t, http.MethodGet, "/api/lists")
				req.RemoteAddr = "198.51.100.20:4000"
				last = testutil.DoRequest(router, req).Code
			}
			health := testutil.NewRequest(t, http.MethodGet, "/health")
			health.RemoteAddr = "198.51.100.20:4000"
			healthRR := testutil.DoRequest(router, health)

			testutil.Then(t, "api calls are rejected but health is not limited", func(t *testing.T) {
				assert.Equal(t, http.StatusTooManyRequests, last)
				testutil.AssertStatusOK(t, healthRR)
			})
		})
	})
}

func TestRouterCheckedStateAcceptsQueryItemID(t *testing.T) {
	testutil.Given(t, "a list with one item", func(t *testing.T) {
		router := newTestRouter(t, nil, nil)
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/lists", map[string]string{"name": "Groceries"}))
		require.Equal(t, http.StatusCreated, rr.Code)
		list := testutil.UnmarshalResponse[handler.CreateListResponse](t, rr)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/lists/"+list.ID+"/items", map[string]string{"label": "milk"}))
		require.Equal(t, http.StatusCreated, rr.Code)
		item := testutil.UnmarshalResponse[handler.CreateItemResponse](t, rr)

		testutil.When(t, "checking it with the item id in the query string", func(t *testing.T) {
			path := "/api/lists/" + list.ID + "/checked_state?item_id=" + item.ID
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, path, map[string]bool{"checked_state": true}))

			testutil.Then(t, "the item is checked", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONBody(t, rr, `{"id":"`+list.ID+`","name":"Groceries","items":[{"id":"`+item.ID+`","label":"milk","checked":true}]}`)
			})
		})
	})
}
