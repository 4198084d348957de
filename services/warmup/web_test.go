package warmup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/services/catalog"
)

func TestWarmup(t *testing.T) {
	// setup
	c := context.TODO()
	store, _, err := mystore.New[catalog.Category](c, mystore.Options{})
	assert.NoError(t, err)
	router := mux.NewRouter()
	NewWebService(store).RegisterEndpoints(c, router)

	// given
	_ = store.Put(c, "1", catalog.Category{ID: 1, Name: "Gold coins", IsActive: true})

	// when
	request, _ := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	// then
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "Successfully processed warmup request")
}
