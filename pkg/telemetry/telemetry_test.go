package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	setGlobal(&Telemetry{tracer: tp.Tracer("test"), config: &Config{}})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		setGlobal(nil)
	})
	return rec
}

func TestInit_DisabledNilConfig(t *testing.T) {
	defer setGlobal(nil)

	tel, err := Init(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, tel.Enabled())
	assert.NotNil(t, tel.Tracer())
	assert.NoError(t, Shutdown(context.Background()))
}

func TestStartSpan_WithoutInit(t *testing.T) {
	setGlobal(nil)
	ctx, span := StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
}

func TestSetSpanError_MarksStatus(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "failing")
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestInjectHeaders(t *testing.T) {
	withRecorder(t)

	ctx, span := StartSpan(context.Background(), "outbound")
	defer span.End()

	h := http.Header{}
	InjectHeaders(ctx, h)
	assert.NotEmpty(t, h.Get("traceparent"))
	assert.Contains(t, h.Get("traceparent"), GetTraceID(ctx))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestGinMiddleware(t *testing.T) {
	rec := withRecorder(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware("test", func(c *gin.Context) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("holidaze.venue_id", c.Param("id"))}
	}))
	r.GET("/venues/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venues/abc", nil))

	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /venues/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("holidaze.venue_id", "abc"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", http.StatusInternalServerError))
}

func TestGinMiddleware_UnmatchedRoute(t *testing.T) {
	rec := withRecorder(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware("test", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET unmatched", spans[0].Name())
}

func TestAddSpanEvent(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "listview.delete")
	AddSpanEvent(ctx, "rollback", attribute.Int("index", 2))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "rollback", spans[0].Events()[0].Name)
	assert.Contains(t, spans[0].Events()[0].Attributes, attribute.Int("index", 2))
}
