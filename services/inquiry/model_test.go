package inquiry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name           string
		req            request
		expectedFields []string
	}{
		{
			name:           "complete appraisal",
			req:            AppraisalRequest{Name: "Ada", Email: "ada@example.com", CoinDescription: "1881 Morgan dollar"},
			expectedFields: []string{},
		},
		{
			name:           "empty appraisal",
			req:            AppraisalRequest{},
			expectedFields: []string{"name", "email", "coinDescription"},
		},
		{
			name:           "appraisal with negative quantity",
			req:            AppraisalRequest{Name: "Ada", Email: "ada@example.com", CoinDescription: "sovereigns", Quantity: -1},
			expectedFields: []string{"quantity"},
		},
		{
			name:           "authentication with invalid email",
			req:            AuthenticationRequest{Name: "Ada", Email: "ada-at-example", CoinDescription: "1933 double eagle"},
			expectedFields: []string{"email"},
		},
		{
			name:           "consultation without topic",
			req:            ConsultationRequest{Name: "Ada", Email: "ada@example.com", PreferredContactMethod: "email"},
			expectedFields: []string{"topic"},
		},
		{
			name:           "consultation by phone without number",
			req:            ConsultationRequest{Name: "Ada", Email: "ada@example.com", PreferredContactMethod: "phone", Topic: "estate"},
			expectedFields: []string{"phone"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := []string{}
			for _, fe := range tc.req.Validate() {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tc.expectedFields, fields)
		})
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("consultation")
	assert.NoError(t, err)
	assert.Equal(t, KindConsultation, kind)

	_, err = ParseKind("valuation")
	assert.Error(t, err)
}
