package token

import "strings"

const maskKeepChars = 5

// Mask redacts the middle of a token so it can be logged safely. Tokens and
// passwords are never logged in full anywhere in this module.
func Mask(tokenStr string) string {
	if len(tokenStr) <= maskKeepChars*2 {
		return strings.Repeat("*", maskKeepChars)
	}
	return tokenStr[:maskKeepChars] + "..." + tokenStr[len(tokenStr)-maskKeepChars:]
}
