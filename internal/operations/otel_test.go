package operations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "museumreport/internal/errors"
)

func TestRunTracer_RecordStageCompletion(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvents int
	}{
		{"success", nil, codes.Ok, 0},
		{"failure", apperrors.NewTypeMismatchError("tags", "list", "string"), codes.Error, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

			rt, err := NewRunTracer(tp.Tracer("test"), nil)
			require.NoError(t, err)

			ctx, span := rt.TraceStage(context.Background(), StateFlattening)
			rt.RecordStageCompletion(ctx, span, StateFlattening, 10*time.Millisecond, 3, tt.err)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "run.stage.flattening", spans[0].Name())
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)

			events := spans[0].Events()
			require.Len(t, events, tt.wantEvents)
			if tt.wantEvents == 0 {
				return
			}
			assert.Equal(t, "exception", events[0].Name)
			attrs := map[string]string{}
			for _, kv := range events[0].Attributes {
				attrs[string(kv.Key)] = kv.Value.Emit()
			}
			assert.Equal(t, "FLATTENING", attrs["stage"])
			assert.Equal(t, string(apperrors.KindTypeMismatch), attrs["error.kind"])
		})
	}
}
