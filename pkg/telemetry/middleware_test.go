package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingMiddleware_RecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	globalTelemetry = nil
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TracingMiddleware())
	r.GET("/orders/:id", func(c *gin.Context) {
		c.Set("user_id", int64(7))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/1", nil))

	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /orders/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	var sawUser bool
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "user.id" {
			sawUser = kv.Value.AsInt64() == 7
		}
	}
	assert.True(t, sawUser)
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, tel)
	assert.NoError(t, Shutdown(context.Background()))
}
