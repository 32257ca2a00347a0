package service

import (
	"regexp"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
)

// PaymentInfo is the payment method supplied at registration.
type PaymentInfo struct {
	Method      string
	CardNumber  string
	PhoneNumber string
}

var (
	nonDigits    = regexp.MustCompile(`\D`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// PaymentDetailsValidator validates payment info and reduces it to the details
// that are safe to store.
type PaymentDetailsValidator struct{}

// NewPaymentDetailsValidator creates a new payment details validator.
func NewPaymentDetailsValidator() *PaymentDetailsValidator {
	return &PaymentDetailsValidator{}
}

// Validate returns an unsaved PaymentMethod. Card methods keep only the last
// four digits; mobile money keeps the normalized phone number.
func (v *PaymentDetailsValidator) Validate(info PaymentInfo) (*model.PaymentMethod, error) {
	method := strings.ToLower(strings.TrimSpace(info.Method))

	switch method {
	case model.MethodTypeVisa, model.MethodTypeMastercard:
		number := strings.ReplaceAll(strings.ReplaceAll(info.CardNumber, " ", ""), "-", "")
		if number == "" {
			return nil, apperrors.NewValidationError("payment.card_number", "card_number is required for card payments")
		}
		if !v.validateLuhn(number) {
			return nil, apperrors.NewValidationError("payment.card_number", "card_number is not a valid card number")
		}
		return &model.PaymentMethod{
			MethodType: method,
			DetailsJSON: datatypes.JSONMap{
				"last4": number[len(number)-4:],
				"brand": method,
			},
		}, nil

	case model.MethodTypeMobileMoney:
		phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(info.PhoneNumber)
		if phone == "" {
			return nil, apperrors.NewValidationError("payment.phone_number", "phone_number is required for mobile_money payments")
		}
		if !phonePattern.MatchString(phone) {
			return nil, apperrors.NewValidationError("payment.phone_number", "phone_number is not a valid phone number")
		}
		return &model.PaymentMethod{
			MethodType:  method,
			DetailsJSON: datatypes.JSONMap{"phone_number": phone},
		}, nil

	default:
		return nil, apperrors.NewValidationError("payment.method", "payment.method must be one of visa, mastercard, mobile_money")
	}
}

// validateLuhn validates a card number using the Luhn algorithm.
func (v *PaymentDetailsValidator) validateLuhn(cardNumber string) bool {
	if nonDigits.MatchString(cardNumber) {
		return false
	}
	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		return false
	}

	sum := 0
	isEven := false

	// Process from right to left
	for i := len(cardNumber) - 1; i >= 0; i-- {
		digit, err := strconv.Atoi(string(cardNumber[i]))
		if err != nil {
			return false
		}

		if isEven {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isEven = !isEven
	}

	return sum%10 == 0
}
