package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
)

type Response struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	writeJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Data: data})
}

// ErrorJSON 依 apperr 的錯誤碼決定 http status,
// 庫存不足時把缺貨明細帶在 details
func ErrorJSON(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	body := ResponseError{
		Code:    int(code),
		Message: apperr.ErrStrMap[code],
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Msg
	}

	var stockErr *repodb.InsufficientStockError
	if errors.As(err, &stockErr) {
		body.Details = stockErr.Items
	}

	writeJSON(w, apperr.HTTPStatus(code), body)
}

func BadRequestJSON(w http.ResponseWriter, msg string) {
	ErrorJSON(w, apperr.BadRequest(msg))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
