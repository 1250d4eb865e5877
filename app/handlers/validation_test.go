package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tstore-shop/account-service/app/dto"
)

/*
Validation Test Cases:

1. TestSanitizeInput
   - Trims, strips control characters, caps length in runes

2. TestSanitizeInput_PreservesPasswordCharacters
   - Special characters survive when preserveSpecialChars is set

3. TestSanitizeEmail
   - Lowercased and trimmed

4. TestValidateRequest_SignupRules
   - Name length, email shape and password length rules fire
*/

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Alice", sanitizeInput("  Alice  ", 40, false))
	assert.Equal(t, "Alice", sanitizeInput("Al\x00ice", 40, false))
	assert.Equal(t, "Alice", sanitizeInput("Al\x01\x02ice", 40, false))
	assert.Equal(t, "abc", sanitizeInput("abcdef", 3, false))
	assert.Equal(t, "héllo", sanitizeInput("héllos", 5, false))
}

func TestSanitizeInput_PreservesPasswordCharacters(t *testing.T) {
	assert.Equal(t, `P@ss"w0rd!#$%`, sanitizeInput(`P@ss"w0rd!#$%`, 128, true))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", sanitizeEmail("  Alice@X.Com ", 255))
}

func TestValidateRequest_SignupRules(t *testing.T) {
	longName := make([]byte, 41)
	for i := range longName {
		longName[i] = 'a'
	}

	cases := []struct {
		name    string
		req     dto.SignupRequest
		wantErr bool
	}{
		{"valid", dto.SignupRequest{Name: "Alice", Email: "alice@x.com", Password: "Password123"}, false},
		{"missing name", dto.SignupRequest{Email: "alice@x.com", Password: "Password123"}, true},
		{"name too long", dto.SignupRequest{Name: string(longName), Email: "alice@x.com", Password: "Password123"}, true},
		{"bad email", dto.SignupRequest{Name: "Alice", Email: "not-an-email", Password: "Password123"}, true},
		{"password too short", dto.SignupRequest{Name: "Alice", Email: "alice@x.com", Password: "short"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRequest(&tc.req)
			if tc.wantErr {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}
