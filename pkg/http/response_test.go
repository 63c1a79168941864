package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, err error) (*httptest.ResponseRecorder, []AppError) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, err))

	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, rec.Code, body.Status)
	return rec, body.Data
}

func TestAppErrorResponse(t *testing.T) {
	rec, errs := errorBody(t, errors.New("dial tcp: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "ERR_INTERNAL", errs[0].Code)
	require.NotContains(t, rec.Body.String(), "connection refused")

	rec, errs = errorBody(t, TooManyRequestsError("rate limit exceeded"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
	require.Equal(t, "ERR_RATE_LIMITED", errs[0].Code)

	wrapped := InternalError("query predictions").WithError(errors.New("timeout"))
	rec, errs = errorBody(t, wrapped)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "query predictions", errs[0].Message)
	require.NotContains(t, rec.Body.String(), "timeout")
}

func TestNewAppError_UnknownStatus(t *testing.T) {
	err := NewAppError(http.StatusConflict, "exists")
	require.Equal(t, "ERR_HTTP_409", err.Code)
	require.Equal(t, "exists", err.Error())
	require.ErrorIs(t, err.WithError(echo.ErrNotFound), echo.ErrNotFound)
}
