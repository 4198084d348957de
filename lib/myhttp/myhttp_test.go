package myhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
)

func TestResponseWriter(t *testing.T) {
	writer := NewWriter(mylog.New("test"))

	t.Run("Invalid input shows reason and fields", func(t *testing.T) {
		response := httptest.NewRecorder()

		writer.WriteError(context.TODO(), response, 3, myerrors.FieldErrors{}.Required("email", ""))

		assert.Equal(t, 400, response.Code)
		resp := ErrorResponse{}
		assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.ErrorCode)
		assert.Equal(t, myerrors.FieldErrors{{Field: "email", Message: "is required"}}, resp.Fields)
	})

	t.Run("Internal error hides details", func(t *testing.T) {
		response := httptest.NewRecorder()

		writer.WriteError(context.TODO(), response, 1, myerrors.NewInternalError(fmt.Errorf("db password wrong")))

		assert.Equal(t, 500, response.Code)
		assert.NotContains(t, response.Body.String(), "password")
		assert.Contains(t, response.Body.String(), "Internal Server Error")
	})

	t.Run("Success", func(t *testing.T) {
		response := httptest.NewRecorder()

		writer.Write(context.TODO(), response, http.StatusOK, SuccessResponse{Message: "ok"})

		assert.Equal(t, 200, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		assert.Contains(t, response.Body.String(), `"message": "ok"`)
	})
}

func TestHostnameWithScheme(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Host = "localhost:8080"

	assert.Equal(t, "http://localhost:8080", HostnameWithScheme("", r))
	assert.Equal(t, "https://shop.example.com", HostnameWithScheme("https://shop.example.com/", r))
}

func TestRequireBasicAuth(t *testing.T) {
	handler := RequireBasicAuth("admin", "secret", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("Missing credentials", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodGet, "/api/admin/products", nil)
		response := httptest.NewRecorder()
		handler.ServeHTTP(response, request)
		assert.Equal(t, 403, response.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodGet, "/api/admin/products", nil)
		request.SetBasicAuth("admin", "guess")
		response := httptest.NewRecorder()
		handler.ServeHTTP(response, request)
		assert.Equal(t, 403, response.Code)
	})

	t.Run("Correct credentials", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodGet, "/api/admin/products", nil)
		request.SetBasicAuth("admin", "secret")
		response := httptest.NewRecorder()
		handler.ServeHTTP(response, request)
		assert.Equal(t, 204, response.Code)
	})
}
