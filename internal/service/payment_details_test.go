package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
)

func TestPaymentDetailsValidator_Validate(t *testing.T) {
	tests := []struct {
		name        string
		info        PaymentInfo
		wantType    string
		wantDetails map[string]interface{}
		wantField   string
	}{
		{
			name:        "visa with spaces",
			info:        PaymentInfo{Method: "Visa", CardNumber: "4111 1111 1111 1111"},
			wantType:    model.MethodTypeVisa,
			wantDetails: map[string]interface{}{"last4": "1111", "brand": "visa"},
		},
		{
			name:        "mastercard with dashes",
			info:        PaymentInfo{Method: "mastercard", CardNumber: "5555-5555-5555-4444"},
			wantType:    model.MethodTypeMastercard,
			wantDetails: map[string]interface{}{"last4": "4444", "brand": "mastercard"},
		},
		{
			name:        "mobile money",
			info:        PaymentInfo{Method: "mobile_money", PhoneNumber: "+256 700 123 456"},
			wantType:    model.MethodTypeMobileMoney,
			wantDetails: map[string]interface{}{"phone_number": "+256700123456"},
		},
		{name: "luhn failure", info: PaymentInfo{Method: "visa", CardNumber: "4111111111111112"}, wantField: "payment.card_number"},
		{name: "letters in card", info: PaymentInfo{Method: "visa", CardNumber: "4111abcd11111111"}, wantField: "payment.card_number"},
		{name: "card too short", info: PaymentInfo{Method: "visa", CardNumber: "4242"}, wantField: "payment.card_number"},
		{name: "missing card", info: PaymentInfo{Method: "visa"}, wantField: "payment.card_number"},
		{name: "missing phone", info: PaymentInfo{Method: "mobile_money"}, wantField: "payment.phone_number"},
		{name: "bad phone", info: PaymentInfo{Method: "mobile_money", PhoneNumber: "12ab"}, wantField: "payment.phone_number"},
		{name: "unknown method", info: PaymentInfo{Method: "paypal"}, wantField: "payment.method"},
	}

	v := NewPaymentDetailsValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := v.Validate(tt.info)
			if tt.wantField != "" {
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Nil(t, method)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, method.MethodType)
			assert.Equal(t, tt.wantDetails, map[string]interface{}(method.DetailsJSON))
		})
	}
}
