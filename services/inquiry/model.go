package inquiry

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/MarcGrol/coinshop/lib/myerrors"
)

type Kind string

const (
	KindAppraisal      Kind = "appraisal"
	KindAuthentication Kind = "authentication"
	KindConsultation   Kind = "consultation"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAppraisal, KindAuthentication, KindConsultation:
		return Kind(s), nil
	default:
		return "", myerrors.NewNotFoundError(fmt.Errorf("unknown inquiry kind '%s'", s))
	}
}

// Inquiry is what the admin dashboard sees, whatever form was used.
type Inquiry struct {
	UID                    string    `json:"uid"`
	Kind                   Kind      `json:"kind"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone,omitempty"`
	CoinDescription        string    `json:"coinDescription,omitempty" datastore:",noindex"`
	Quantity               int       `json:"quantity,omitempty"`
	PreferredContactMethod string    `json:"preferredContactMethod,omitempty"`
	Topic                  string    `json:"topic,omitempty"`
	Message                string    `json:"message,omitempty" datastore:",noindex"`
	CreatedAt              time.Time `json:"createdAt"`
}

type request interface {
	Validate() myerrors.FieldErrors
	toInquiry() Inquiry
}

type AppraisalRequest struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	CoinDescription string `form:"coinDescription" json:"coinDescription"`
	Quantity        int    `form:"quantity" json:"quantity"`
	Message         string `form:"message" json:"message"`
}

func (r AppraisalRequest) Validate() myerrors.FieldErrors {
	errs := validateContact(r.Name, r.Email).
		Required("coinDescription", r.CoinDescription)
	if r.Quantity < 0 {
		errs = append(errs, myerrors.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	return errs
}

func (r AppraisalRequest) toInquiry() Inquiry {
	return Inquiry{
		Kind:            KindAppraisal,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		CoinDescription: r.CoinDescription,
		Quantity:        r.Quantity,
		Message:         r.Message,
	}
}

type AuthenticationRequest struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	CoinDescription string `form:"coinDescription" json:"coinDescription"`
	Message         string `form:"message" json:"message"`
}

func (r AuthenticationRequest) Validate() myerrors.FieldErrors {
	return validateContact(r.Name, r.Email).
		Required("coinDescription", r.CoinDescription)
}

func (r AuthenticationRequest) toInquiry() Inquiry {
	return Inquiry{
		Kind:            KindAuthentication,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		CoinDescription: r.CoinDescription,
		Message:         r.Message,
	}
}

type ConsultationRequest struct {
	Name                   string `form:"name" json:"name"`
	Email                  string `form:"email" json:"email"`
	Phone                  string `form:"phone" json:"phone"`
	PreferredContactMethod string `form:"preferredContactMethod" json:"preferredContactMethod"`
	Topic                  string `form:"topic" json:"topic"`
	Message                string `form:"message" json:"message"`
}

func (r ConsultationRequest) Validate() myerrors.FieldErrors {
	errs := validateContact(r.Name, r.Email).
		Required("preferredContactMethod", r.PreferredContactMethod).
		Required("topic", r.Topic)
	if r.PreferredContactMethod == "phone" && r.Phone == "" {
		errs = append(errs, myerrors.FieldError{Field: "phone", Message: "is required when contacting by phone"})
	}
	return errs
}

func (r ConsultationRequest) toInquiry() Inquiry {
	return Inquiry{
		Kind:                   KindConsultation,
		Name:                   r.Name,
		Email:                  r.Email,
		Phone:                  r.Phone,
		PreferredContactMethod: r.PreferredContactMethod,
		Topic:                  r.Topic,
		Message:                r.Message,
	}
}

func validateContact(name string, email string) myerrors.FieldErrors {
	errs := myerrors.FieldErrors{}.
		Required("name", name).
		Required("email", email)
	if email != "" {
		_, err := mail.ParseAddress(email)
		if err != nil {
			errs = append(errs, myerrors.FieldError{Field: "email", Message: "is not a valid email address"})
		}
	}
	return errs
}
