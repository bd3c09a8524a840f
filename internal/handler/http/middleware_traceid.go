package http

import (
	"context"
	"net/http"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/google/uuid"
)

const traceIDHeader = "X-Trace-ID"

// withTraceID assigns every request a trace id, echoing the one the
// caller sent when present. The id is attached to the request-scoped
// logger, stored under [utils.TraceIDCtxKey] and mirrored in the
// response header.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := h.logger.With().Str("trace_id", traceID).Logger()

		ctx = context.WithValue(ctx, utils.TraceIDCtxKey, traceID)
		r = r.WithContext(l.WithContext(ctx))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}
