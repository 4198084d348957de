package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/myuuid"
	"github.com/MarcGrol/coinshop/services/cart"
	"github.com/MarcGrol/coinshop/services/catalog"
	"github.com/MarcGrol/coinshop/services/checkout"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

var (
	krugerrand = catalog.ProductDetails{
		Product:  catalog.Product{ID: 1, Name: "Krugerrand 1967", Price: 1899.95, PrimaryImageURL: "/img/krugerrand.jpg", IsActive: true},
		Category: &catalog.Category{ID: 1, Name: "Gold coins"},
	}
	morganDollar = catalog.ProductDetails{
		Product: catalog.Product{ID: 2, Name: "Morgan dollar 1881", Price: 65, IsActive: true},
	}
	contactJSON = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","address":"Main street 1","city":"London","state":"Greater London","postcode":"N1 9GU"}`
)

func TestCart(t *testing.T) {

	t.Run("New visitor has empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// when
		response := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		state := cartState(t, response)
		assert.Empty(t, state.Items)
		assert.Equal(t, 0, state.ItemCount)
		assert.True(t, state.Total.IsZero())
		assert.NotEmpty(t, response.Result().Cookies())
	})

	t.Run("Add same product twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given

		// when
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":1}`)
		response := b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":1}`)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		state := cartState(t, response)
		assert.Len(t, state.Items, 1)
		assert.Equal(t, 2, state.Items[0].Quantity)
		assert.Equal(t, "Gold coins", state.Items[0].CategoryName)
		assert.Equal(t, 2, state.ItemCount)
		assert.True(t, decimal.RequireFromString("3799.90").Equal(state.Total))
	})

	t.Run("Cart survives between requests", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":2}`)

		// when
		response := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		state := cartState(t, response)
		assert.Len(t, state.Items, 1)
		assert.Equal(t, "Morgan dollar 1881", state.Items[0].Name)
	})

	t.Run("Add unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given

		// when
		response := b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":99}`)

		// then
		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Empty(t, cartState(t, b.do(http.MethodGet, "/api/cart", "", "")).Items)
	})

	t.Run("Update quantity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":2}`)

		// when
		response := b.do(http.MethodPut, "/api/cart/items/2", "application/json", `{"quantity":5}`)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		state := cartState(t, response)
		assert.Equal(t, 5, state.ItemCount)
		assert.True(t, decimal.NewFromInt(325).Equal(state.Total))
	})

	t.Run("Update quantity to zero removes item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":2}`)

		// when
		response := b.do(http.MethodPut, "/api/cart/items/2", "application/json", `{"quantity":0}`)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Empty(t, cartState(t, response).Items)
	})

	t.Run("Update quantity with invalid id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// when
		response := b.do(http.MethodPut, "/api/cart/items/abc", "application/json", `{"quantity":1}`)

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Remove item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":1}`)
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":2}`)

		// when
		response := b.do(http.MethodDelete, "/api/cart/items/1", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		state := cartState(t, response)
		assert.Len(t, state.Items, 1)
		assert.Equal(t, 2, state.Items[0].ID)
	})

	t.Run("Clear cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":1}`)

		// when
		response := b.do(http.MethodDelete, "/api/cart", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, 0, cartState(t, response).ItemCount)
	})

	t.Run("Cart grows beyond forty distinct products", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, catalogProducts, _ := setup(t, ctrl)

		// given
		for id := 100; id < 140; id++ {
			catalogProducts.put(catalog.ProductDetails{
				Product: catalog.Product{ID: id, Name: fmt.Sprintf("Krugerrand 1967 proof coin %d", id), Price: 1899.95,
					PrimaryImageURL: fmt.Sprintf("/img/products/krugerrand-proof-%d.jpg", id), IsActive: true},
				Category: &catalog.Category{ID: 1, Name: "Gold coins"},
			})
		}

		// when
		for id := 100; id < 140; id++ {
			response := b.do(http.MethodPost, "/api/cart/items", "application/json", fmt.Sprintf(`{"productId":%d}`, id))
			assert.Equal(t, http.StatusOK, response.Code, "adding product %d", id)
		}

		// then
		state := cartState(t, b.do(http.MethodGet, "/api/cart", "", ""))
		assert.Len(t, state.Items, 40)
		assert.Equal(t, "Gold coins", state.Items[39].CategoryName)
		for _, cookie := range b.cookies {
			assert.Less(t, len(cookie.String()), 4096)
		}
	})

	t.Run("Cart shows current catalog details", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, catalogProducts, _ := setup(t, ctrl)

		// given
		withItem(b)
		repriced := krugerrand
		repriced.Price = 1950
		catalogProducts.put(repriced)

		// when
		response := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		state := cartState(t, response)
		assert.Len(t, state.Items, 1)
		assert.True(t, decimal.NewFromInt(1950).Equal(state.Total))
	})

	t.Run("Discontinued product leaves the cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, catalogProducts, _ := setup(t, ctrl)

		// given
		withItem(b)
		b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":2}`)
		catalogProducts.remove(krugerrand.ID)

		// when
		response := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		state := cartState(t, response)
		assert.Len(t, state.Items, 1)
		assert.Equal(t, morganDollar.ID, state.Items[0].ID)
	})

	t.Run("Catalog failure keeps the cart for later", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, catalogProducts, _ := setup(t, ctrl)

		// given
		withItem(b)
		catalogProducts.fail(myerrors.NewInternalError(fmt.Errorf("datastore unreachable")))

		// when
		failed := b.do(http.MethodGet, "/api/cart", "", "")
		catalogProducts.fail(nil)
		recovered := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		assert.Equal(t, http.StatusInternalServerError, failed.Code)
		assert.Equal(t, http.StatusOK, recovered.Code)
		assert.Equal(t, 1, cartState(t, recovered).ItemCount)
	})

	t.Run("Tampered cookie starts a new visit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		b.cookies = []*http.Cookie{{Name: sessionName, Value: "not-a-signed-value"}}

		// when
		response := b.do(http.MethodGet, "/api/cart", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Empty(t, cartState(t, response).Items)
	})
}

func TestCheckout(t *testing.T) {

	t.Run("Empty cart view", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// when
		response := b.do(http.MethodGet, "/api/checkout", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		view := checkoutView(t, response)
		assert.Equal(t, checkout.ViewEmptyCart, view.View)
		assert.Equal(t, checkout.StepCart, view.CurrentStep)
		assert.Empty(t, view.CompletedSteps)
	})

	t.Run("Complete empty cart is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// when
		response := b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Complete cart moves to contact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withItem(b)

		// when
		response := b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		view := checkoutView(t, response)
		assert.Equal(t, "contact", view.View)
		assert.Equal(t, []checkout.Step{checkout.StepCart}, view.CompletedSteps)
		assert.False(t, view.CanPay)
	})

	t.Run("Incomplete contact form keeps entered data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withItem(b)
		b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")
		form := url.Values{"firstName": {"Ada"}, "email": {"ada@example.com"}}

		// when
		response := b.do(http.MethodPost, "/api/checkout/contact", "application/x-www-form-urlencoded", form.Encode())

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		errorResp := myhttp.ErrorResponse{}
		assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &errorResp))
		assert.Len(t, errorResp.Fields, 5)

		view := checkoutView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
		assert.Equal(t, checkout.StepContact, view.CurrentStep)
		assert.Equal(t, "Ada", view.Customer.FirstName)
		assert.False(t, view.CanPay)
	})

	t.Run("Navigation keeps completed steps", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withItem(b)
		b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")
		b.do(http.MethodPost, "/api/checkout/contact", "application/json", contactJSON)

		// when
		response := b.do(http.MethodPost, "/api/checkout/steps/cart", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		view := checkoutView(t, response)
		assert.Equal(t, checkout.StepCart, view.CurrentStep)
		assert.Equal(t, []checkout.Step{checkout.StepCart, checkout.StepContact}, view.CompletedSteps)
		assert.Equal(t, "Lovelace", view.Customer.LastName)
		assert.True(t, view.CanPay)
	})

	t.Run("Navigate to unknown step", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// when
		response := b.do(http.MethodPost, "/api/checkout/steps/shipping", "", "")

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Emptied cart shows empty cart view whatever the step", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withItem(b)
		b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")
		b.do(http.MethodPost, "/api/checkout/contact", "application/json", contactJSON)

		// when
		b.do(http.MethodDelete, "/api/cart", "", "")
		response := b.do(http.MethodGet, "/api/checkout", "", "")

		// then
		view := checkoutView(t, response)
		assert.Equal(t, checkout.ViewEmptyCart, view.View)
		assert.Equal(t, checkout.StepPayment, view.CurrentStep)
	})
}

func TestPayment(t *testing.T) {

	t.Run("Pay before contact is completed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withItem(b)

		// when
		response := b.do(http.MethodPost, "/api/checkout/pay", "", "")

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Pay creates session and keeps cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, payments := setup(t, ctrl)

		// given
		withPayableCheckout(b)
		payments.EXPECT().CreateSession(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, r *http.Request, req checkoutapi.SessionRequest) (checkoutapi.SessionResponse, error) {
				assert.Len(t, req.Items, 1)
				assert.Equal(t, "Krugerrand 1967", req.Items[0].Name)
				assert.True(t, decimal.RequireFromString("1899.95").Equal(req.Items[0].Price))
				assert.Equal(t, "Gold coins", req.Items[0].CategoryName)
				assert.Equal(t, "ada@example.com", req.CustomerInfo.Email)
				return checkoutapi.SessionResponse{SessionID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
			})

		// when
		response := b.do(http.MethodPost, "/api/checkout/pay", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		resp := checkoutapi.SessionResponse{}
		assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.Equal(t, "cs_test_1", resp.SessionID)
		assert.Equal(t, 1, cartState(t, b.do(http.MethodGet, "/api/cart", "", "")).ItemCount)
	})

	t.Run("Failed payment session keeps state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, payments := setup(t, ctrl)

		// given
		withPayableCheckout(b)
		payments.EXPECT().CreateSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(checkoutapi.SessionResponse{},
			myerrors.NewInternalError(fmt.Errorf("stripe unreachable")))

		// when
		response := b.do(http.MethodPost, "/api/checkout/pay", "", "")

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		view := checkoutView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
		assert.Equal(t, checkout.StepPayment, view.CurrentStep)
		assert.True(t, view.CanPay)
		assert.Equal(t, 1, view.Cart.ItemCount)
	})

	t.Run("Successful payment clears cart and progress", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withPayableCheckout(b)

		// when
		response := b.do(http.MethodGet, "/checkout/success?session_id=cs_test_1", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		view := checkoutView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
		assert.Equal(t, checkout.ViewEmptyCart, view.View)
		assert.Equal(t, checkout.StepCart, view.CurrentStep)
		assert.Empty(t, view.CompletedSteps)
		assert.Empty(t, view.Customer.Email)
		assert.Equal(t, 0, view.Cart.ItemCount)
	})

	t.Run("Cancelled payment keeps cart and progress", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		b, _, _ := setup(t, ctrl)

		// given
		withPayableCheckout(b)

		// when
		response := b.do(http.MethodGet, "/checkout/cancel", "", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		view := checkoutView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
		assert.Equal(t, checkout.StepPayment, view.CurrentStep)
		assert.True(t, view.CanPay)
		assert.Equal(t, 1, view.Cart.ItemCount)
	})
}

type browser struct {
	router  *mux.Router
	cookies []*http.Cookie
}

// catalogFake answers lookups from a map, like the catalog does for active products.
type catalogFake struct {
	sync.Mutex
	products map[int]catalog.ProductDetails
	err      error
}

func (f *catalogFake) lookup(c context.Context, productID int) (catalog.ProductDetails, error) {
	f.Lock()
	defer f.Unlock()

	if f.err != nil {
		return catalog.ProductDetails{}, f.err
	}
	details, found := f.products[productID]
	if !found {
		return catalog.ProductDetails{}, myerrors.NewNotFoundError(fmt.Errorf("product %d not found", productID))
	}
	return details, nil
}

func (f *catalogFake) put(details catalog.ProductDetails) {
	f.Lock()
	defer f.Unlock()
	f.products[details.ID] = details
}

func (f *catalogFake) remove(productID int) {
	f.Lock()
	defer f.Unlock()
	delete(f.products, productID)
}

func (f *catalogFake) fail(err error) {
	f.Lock()
	defer f.Unlock()
	f.err = err
}

func setup(t *testing.T, ctrl *gomock.Controller) (*browser, *catalogFake, *MockPaymentSessionCreator) {
	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("visitor-1").AnyTimes()
	fake := &catalogFake{products: map[int]catalog.ProductDetails{
		krugerrand.ID:   krugerrand,
		morganDollar.ID: morganDollar,
	}}
	products := NewMockProductLookup(ctrl)
	products.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(fake.lookup).AnyTimes()
	payments := NewMockPaymentSessionCreator(ctrl)

	sut := NewWebService(NewCookieStore("test-session-secret", false), uuider, products, payments)
	router := mux.NewRouter()
	sut.RegisterEndpoints(context.TODO(), router)

	return &browser{router: router}, fake, payments
}

func (b *browser) do(method string, path string, contentType string, body string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range b.cookies {
		request.AddCookie(cookie)
	}
	response := httptest.NewRecorder()
	b.router.ServeHTTP(response, request)
	if cookies := response.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return response
}

func withItem(b *browser) {
	b.do(http.MethodPost, "/api/cart/items", "application/json", `{"productId":1}`)
}

func withPayableCheckout(b *browser) {
	withItem(b)
	b.do(http.MethodPost, "/api/checkout/cart/complete", "", "")
	b.do(http.MethodPost, "/api/checkout/contact", "application/json", contactJSON)
}

func cartState(t *testing.T, response *httptest.ResponseRecorder) cart.State {
	state := cart.State{}
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &state))
	return state
}

func checkoutView(t *testing.T, response *httptest.ResponseRecorder) CheckoutView {
	view := CheckoutView{}
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &view))
	return view
}
