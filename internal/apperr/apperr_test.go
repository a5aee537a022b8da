package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, NotFoundCode, CodeOf(NotFound("order not found")))
	assert.Equal(t, ConflictCode, CodeOf(Wrap(ConflictCode, "rejected", errors.New("boom"))))

	// 非 AppError 一律 internal
	assert.Equal(t, InternalErrorCode, CodeOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(BadRequestCode))
	// conflict 對外也是 400, 只靠 body 的錯誤碼區分
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ConflictCode))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundCode))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(UnauthenticatedCode))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ExternalErrorCode))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(InternalErrorCode))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(ConflictCode, "payment already recorded", cause)
	assert.ErrorIs(t, err, cause)
}
