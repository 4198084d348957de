package checkoutapi

import (
	"fmt"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
)

// CustomerInfo are the contact details entered during checkout.
type CustomerInfo struct {
	FirstName string `form:"firstName" json:"firstName"`
	LastName  string `form:"lastName" json:"lastName"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone,omitempty"`
	Address   string `form:"address" json:"address"`
	City      string `form:"city" json:"city"`
	State     string `form:"state" json:"state"`
	Postcode  string `form:"postcode" json:"postcode"`
	Notes     string `form:"notes" json:"notes,omitempty"`
}

// Validate lists every missing required field. Phone and notes are optional.
func (ci CustomerInfo) Validate() myerrors.FieldErrors {
	return myerrors.FieldErrors{}.
		Required("firstName", ci.FirstName).
		Required("lastName", ci.LastName).
		Required("email", ci.Email).
		Required("address", ci.Address).
		Required("city", ci.City).
		Required("state", ci.State).
		Required("postcode", ci.Postcode)
}

func (ci CustomerInfo) FullName() string {
	return ci.FirstName + " " + ci.LastName
}

func (ci CustomerInfo) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", ci.Address, ci.City, ci.State, ci.Postcode)
}

// CustomerInfoFromRequest accepts both a json body and a posted form.
func CustomerInfoFromRequest(r *http.Request) (CustomerInfo, error) {
	info := CustomerInfo{}
	if myhttp.IsJSON(r) {
		err := myhttp.DecodeJSON(r, &info)
		return info, err
	}

	err := r.ParseForm()
	if err != nil {
		return info, myerrors.NewInvalidInputError(err)
	}
	return CustomerInfoFromValues(r.Form)
}

func CustomerInfoFromValues(values url.Values) (CustomerInfo, error) {
	info := CustomerInfo{}
	err := formcodec.NewDecoder().Decode(&info, values)
	if err != nil {
		return info, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	return info, nil
}
