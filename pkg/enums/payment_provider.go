package enums

import "fmt"

// PaymentProvider qualifies ledger rows by billing provider.
type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
)

// String implements fmt.Stringer.
func (p PaymentProvider) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentProvider.
func (p PaymentProvider) IsValid() bool {
	return p == PaymentProviderStripe
}

// ParsePaymentProvider converts raw input into a PaymentProvider.
func ParsePaymentProvider(value string) (PaymentProvider, error) {
	if PaymentProvider(value) == PaymentProviderStripe {
		return PaymentProviderStripe, nil
	}
	return "", fmt.Errorf("invalid payment provider %q", value)
}
