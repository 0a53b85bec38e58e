package enums

import (
	"fmt"
	"strings"
)

// PurchaseMethod records which balance paid for a lead unlock.
type PurchaseMethod string

const (
	PurchaseMethodWallet PurchaseMethod = "wallet"
	PurchaseMethodCredit PurchaseMethod = "credit"
)

var validPurchaseMethods = []PurchaseMethod{
	PurchaseMethodWallet,
	PurchaseMethodCredit,
}

// IsValid reports whether the value is known.
func (m PurchaseMethod) IsValid() bool {
	for _, candidate := range validPurchaseMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePurchaseMethod converts raw input into a PurchaseMethod.
func ParsePurchaseMethod(value string) (PurchaseMethod, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPurchaseMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase method %q", value)
}
