package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_AreDistinctAndWrappable(t *testing.T) {
	all := []error{ErrorNotFound, ErrorUnauthorized, ErrorValidation, ErrorNotConfigured, ErrorDelivery, ErrInvalidToken, ErrTokenExpired}
	for i, a := range all {
		wrapped := fmt.Errorf("context: %w", a)
		if !errors.Is(wrapped, a) {
			t.Fatalf("wrapped %v does not match", a)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v unexpectedly matches %v", a, b)
			}
		}
	}
}
