package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"probrowse/pkg/testutil"
	"probrowse/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
)

func TestTraceContextMiddlewareGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TraceContextMiddleware())

	var ctxTraceID, ctxRequestID interface{}
	router.GET("/trace", func(c *gin.Context) {
		ctx := c.Request.Context()
		ctxTraceID = ctx.Value(contextkey.TraceID)
		ctxRequestID = ctx.Value(contextkey.RequestID)
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/trace", nil))

	traceID := recorder.Header().Get("X-Trace-Id")
	requestID := recorder.Header().Get("X-Request-Id")
	testutil.AssertTrue(t, traceID != "", "trace id should be generated")
	testutil.AssertTrue(t, requestID != "", "request id should be generated")
	testutil.AssertEqual(t, ctxTraceID, traceID)
	testutil.AssertEqual(t, ctxRequestID, requestID)
}

func TestTraceContextMiddlewarePreservesIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TraceContextMiddleware())
	router.GET("/trace", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	req.Header.Set("X-Request-Id", "req-456")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	testutil.AssertEqual(t, recorder.Header().Get("X-Trace-Id"), "trace-123")
	testutil.AssertEqual(t, recorder.Header().Get("X-Request-Id"), "req-456")
}
