package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/rs/zerolog/log"
)

// RecoverMiddleware panic 收斂成標準錯誤回應, 不讓連線直接斷掉
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apperr.HTTPStatus(apperr.InternalErrorCode))
				json.NewEncoder(w).Encode(map[string]any{
					"code":    int(apperr.InternalErrorCode),
					"message": apperr.ErrStrMap[apperr.InternalErrorCode],
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
