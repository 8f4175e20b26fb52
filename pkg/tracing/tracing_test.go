package tracing

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddleware_SpanNames(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	prevTracer := Tracer
	Tracer = tp.Tracer("tracing-test")
	defer func() {
		Tracer = prevTracer
		otel.SetTracerProvider(prevProvider)
	}()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/diagnosis/sessions/:id", func(c *gin.Context) {
		c.Status(204)
	})

	// 命中路由：span 用路由模板命名，不泄漏具体ID
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/diagnosis/sessions/abc-123", nil))
	require.Equal(t, 204, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/diagnosis/sessions/:id", spans[0].Name())

	// 未命中路由：回退到原始路径
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	require.Equal(t, 404, w.Code)

	spans = recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /nope", spans[1].Name())
}
