package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcegraph/pkg/web/response"
)

// Recovery converts a panic into a JSON:API 500 error response and logs the
// panic value with its stack
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("panic recovered",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.String("panic", fmt.Sprint(rec)),
						zap.ByteString("stack", debug.Stack()),
					)

					if err := response.RenderError(w, fmt.Errorf("panic: %v", rec)); err != nil {
						logger.Debug("response write failed", zap.Error(err))
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
