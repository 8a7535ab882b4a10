package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{name: "empty address", address: "", valid: false},
		{name: "too short", address: "12 Main", valid: false},
		{name: "nine characters", address: "123456789", valid: false},
		{name: "ten characters", address: "1234567890", valid: true},
		{name: "full address", address: "1 Infinite Loop, Cupertino, CA 95014", valid: true},
		// The heuristic has no content check; long garbage passes.
		{name: "long garbage", address: strings.Repeat("x", 40), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAddress(tt.address)
			assert.Equal(t, tt.valid, result.Valid)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestValidateAddress_Reasons(t *testing.T) {
	assert.Equal(t, "Address cannot be empty.", ValidateAddress("").Reason)
	assert.Equal(t, "Address is too short to be valid.", ValidateAddress("short").Reason)
	assert.Equal(t, "Address format appears valid.", ValidateAddress("123 Long Enough Street").Reason)
}
