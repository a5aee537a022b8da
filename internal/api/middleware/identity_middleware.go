package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/constants"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
)

// IdentityMiddleware 認證由上游 gateway 處理, 這裡只讀已驗證後塞進來的 X-User-ID
// 匿名訪客用 cookie 上的 session key 識別購物車
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if header := r.Header.Get("X-User-ID"); header != "" {
			if userID, err := strconv.ParseUint(header, 10, 64); err == nil {
				ctx = context.WithValue(ctx, constants.UserIDKey, uint(userID))
			}
		}

		sessionKey := ""
		if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
			sessionKey = cookie.Value
		}
		if sessionKey == "" {
			sessionKey = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     constants.SessionCookieName,
				Value:    sessionKey,
				Path:     "/",
				HttpOnly: true,
				Expires:  time.Now().Add(30 * 24 * time.Hour),
			})
		}
		ctx = context.WithValue(ctx, constants.SessionKeyKey, sessionKey)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(constants.UserIDKey).(uint)
	return userID, ok
}

func SessionKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(constants.SessionKeyKey).(string); ok {
		return key
	}
	return ""
}

// RequireUser 結帳相關路由都要登入
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			api.ErrorJSON(w, apperr.New(apperr.UnauthenticatedCode, "login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adminChecker interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

// RequireAdmin 後台庫存/訂單管理路由
func RequireAdmin(users adminChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				api.ErrorJSON(w, apperr.New(apperr.UnauthenticatedCode, "login required"))
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil || !user.IsAdmin {
				api.ErrorJSON(w, apperr.New(apperr.UnauthenticatedCode, "admin privilege required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
