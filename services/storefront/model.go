package storefront

import (
	"github.com/MarcGrol/coinshop/services/cart"
	"github.com/MarcGrol/coinshop/services/checkout"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

// cartLine is all the session cookie keeps of a cart line.
type cartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// visitorState is everything a browser session remembers between requests.
// Items are not stored: they are looked up from Lines on every request.
type visitorState struct {
	VisitorID      string                   `json:"visitorId"`
	Lines          []cartLine               `json:"lines"`
	CurrentStep    checkout.Step            `json:"currentStep"`
	CompletedSteps []checkout.Step          `json:"completedSteps"`
	Customer       checkoutapi.CustomerInfo `json:"customer"`
	Items          []cart.Item              `json:"-"`
}

func (vs visitorState) cart() *cart.Store {
	return cart.NewStore(vs.Items...)
}

func (vs *visitorState) rememberLines() {
	vs.Lines = make([]cartLine, 0, len(vs.Items))
	for _, item := range vs.Items {
		vs.Lines = append(vs.Lines, cartLine{ProductID: item.ID, Quantity: item.Quantity})
	}
}

func (vs visitorState) controller() *checkout.Controller {
	ctrl := checkout.NewController()
	if vs.CurrentStep != "" {
		ctrl.Current = vs.CurrentStep
	}
	for _, step := range vs.CompletedSteps {
		ctrl.Completed[step] = true
	}
	ctrl.Customer = vs.Customer
	return ctrl
}

func (vs *visitorState) setController(ctrl *checkout.Controller) {
	vs.CurrentStep = ctrl.Current
	vs.CompletedSteps = ctrl.CompletedSteps()
	vs.Customer = ctrl.Customer
}

type AddItemRequest struct {
	ProductID int `json:"productId"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutView struct {
	View           string                   `json:"view"`
	CurrentStep    checkout.Step            `json:"currentStep"`
	CompletedSteps []checkout.Step          `json:"completedSteps"`
	CanPay         bool                     `json:"canPay"`
	Customer       checkoutapi.CustomerInfo `json:"customer"`
	Cart           cart.State               `json:"cart"`
}

func newCheckoutView(cartState cart.State, ctrl *checkout.Controller) CheckoutView {
	return CheckoutView{
		View:           ctrl.View(cartState.ItemCount == 0),
		CurrentStep:    ctrl.Current,
		CompletedSteps: ctrl.CompletedSteps(),
		CanPay:         ctrl.CanPay(),
		Customer:       ctrl.Customer,
		Cart:           cartState,
	}
}

func lineItems(items []cart.Item) []checkoutapi.LineItem {
	result := make([]checkoutapi.LineItem, 0, len(items))
	for _, item := range items {
		result = append(result, checkoutapi.LineItem{
			ID:           item.ID,
			Name:         item.Name,
			Price:        item.Price,
			CategoryName: item.CategoryName,
			Quantity:     item.Quantity,
		})
	}
	return result
}
