package warmup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/basketcheckout/lib/myvault"
)

func TestWarmup(t *testing.T) {

	t.Run("Tokens read", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, vault := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), "currentToken_stripe").Return(myvault.Token{AccessToken: "abc"}, true, nil)
		vault.EXPECT().Get(gomock.Any(), "currentToken_mollie").Return(myvault.Token{}, false, nil)

		// when
		response := doGet(t, router)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully processed warmup request")
	})

	t.Run("Vault unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, vault := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), "currentToken_stripe").Return(myvault.Token{}, false, fmt.Errorf("datastore error"))

		// when
		response := doGet(t, router)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
}

func setup(ctrl *gomock.Controller) (*mux.Router, *myvault.MockVaultReader[myvault.Token]) {
	vault := myvault.NewMockVaultReader[myvault.Token](ctrl)
	router := mux.NewRouter()
	NewService(vault, "stripe", "mollie").RegisterEndpoints(context.TODO(), router)
	return router, vault
}

func doGet(t *testing.T, router *mux.Router) *httptest.ResponseRecorder {
	request, err := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
