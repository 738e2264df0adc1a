package chantypes

import "fmt"

func errInvalidSignatureLength(n int) error {
	return fmt.Errorf("chantypes: invalid signature length %d, want 65", n)
}
