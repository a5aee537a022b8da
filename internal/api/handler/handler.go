package handler

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/ordercenter/internal/api/middleware"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/go-chi/chi/v5"
)

func parseUintParam(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

// identityFromRequest 登入用戶優先, 否則用匿名 session
func identityFromRequest(r *http.Request) service.Identity {
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		return service.Identity{UserID: &userID}
	}
	return service.Identity{SessionKey: middleware.SessionKeyFromContext(r.Context())}
}

func mustUserID(r *http.Request) uint {
	// RequireUser middleware 保證有值
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}
