package checkout

import (
	"fmt"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

type Step string

const (
	StepCart    Step = "cart"
	StepContact Step = "contact"
	StepPayment Step = "payment"

	// ViewEmptyCart is rendered instead of any step while the cart is empty.
	ViewEmptyCart = "empty-cart"
)

var Steps = []Step{StepCart, StepContact, StepPayment}

func ParseStep(s string) (Step, error) {
	for _, step := range Steps {
		if string(step) == s {
			return step, nil
		}
	}
	return "", myerrors.NewInvalidInputError(fmt.Errorf("unknown checkout step '%s'", s))
}

// Controller tracks where a visitor is in the checkout. Steps only become completed
// through their own action; navigation never resets completed steps or entered data.
type Controller struct {
	Current   Step                     `json:"currentStep"`
	Completed map[Step]bool            `json:"-"`
	Customer  checkoutapi.CustomerInfo `json:"customer"`
}

func NewController() *Controller {
	return &Controller{
		Current:   StepCart,
		Completed: map[Step]bool{},
	}
}

func (ctrl *Controller) CompleteCart() {
	ctrl.markCompleted(StepCart)
	ctrl.Current = StepContact
}

// CompleteContact keeps the entered data even when it is rejected, so the visitor can fix it.
func (ctrl *Controller) CompleteContact(info checkoutapi.CustomerInfo) error {
	ctrl.Customer = info

	err := info.Validate().AsError()
	if err != nil {
		return err
	}

	ctrl.markCompleted(StepContact)
	ctrl.Current = StepPayment
	return nil
}

func (ctrl *Controller) GoTo(step Step) {
	ctrl.Current = step
}

func (ctrl *Controller) IsCompleted(step Step) bool {
	return ctrl.Completed[step]
}

// CompletedSteps in checkout order.
func (ctrl *Controller) CompletedSteps() []Step {
	result := []Step{}
	for _, step := range Steps {
		if ctrl.Completed[step] {
			result = append(result, step)
		}
	}
	return result
}

func (ctrl *Controller) CanPay() bool {
	return ctrl.Completed[StepContact]
}

// View is what to render: the empty cart message wins over every step.
func (ctrl *Controller) View(cartIsEmpty bool) string {
	if cartIsEmpty {
		return ViewEmptyCart
	}
	return string(ctrl.Current)
}

func (ctrl *Controller) Reset() {
	*ctrl = *NewController()
}

func (ctrl *Controller) markCompleted(step Step) {
	if ctrl.Completed == nil {
		ctrl.Completed = map[Step]bool{}
	}
	ctrl.Completed[step] = true
}
