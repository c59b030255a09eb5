package enums

import "fmt"

// DeliveryMethod identifies how an order reaches the customer.
type DeliveryMethod string

const (
	DeliveryMethodHomeDelivery DeliveryMethod = "HOME_DELIVERY"
	DeliveryMethodStorePickup  DeliveryMethod = "STORE_PICKUP"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodHomeDelivery,
	DeliveryMethodStorePickup,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
