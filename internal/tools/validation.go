// Package tools implements the callable functions the model can invoke:
// address validation, geocoding, aerial insights, and the warehouse queries.
package tools

import "github.com/cre-analyst/deal-memo-agent/internal/models"

// ValidateAddress checks that an address string is a plausible input. It is a
// heuristic gate, not a deliverability check: non-empty and at least ten
// characters passes.
func ValidateAddress(address string) models.ValidationResult {
	if address == "" {
		return models.ValidationResult{Valid: false, Reason: "Address cannot be empty."}
	}
	if len(address) < 10 {
		return models.ValidationResult{Valid: false, Reason: "Address is too short to be valid."}
	}
	return models.ValidationResult{Valid: true, Reason: "Address format appears valid."}
}
