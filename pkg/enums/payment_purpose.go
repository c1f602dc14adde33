package enums

import "fmt"

// PaymentPurpose distinguishes one-time donations from recurring billing.
type PaymentPurpose string

const (
	PaymentPurposeDonation     PaymentPurpose = "donation"
	PaymentPurposeSubscription PaymentPurpose = "subscription"
)

var validPaymentPurposes = []PaymentPurpose{
	PaymentPurposeDonation,
	PaymentPurposeSubscription,
}

// String implements fmt.Stringer.
func (p PaymentPurpose) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentPurpose.
func (p PaymentPurpose) IsValid() bool {
	for _, candidate := range validPaymentPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentPurpose converts raw input into a PaymentPurpose.
func ParsePaymentPurpose(value string) (PaymentPurpose, error) {
	for _, candidate := range validPaymentPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment purpose %q", value)
}
