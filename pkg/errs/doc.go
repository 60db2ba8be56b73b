// Package errs provides structured error handling with error codes for
// sipe-auth.
//
// Every failure the authentication core can surface is tagged with a Code,
// so callers branch on error kind instead of matching message strings:
//
//	result, err := authService.Login(ctx, cpf, password)
//	if errs.IsCode(err, errs.CodeAccountLocked) {
//	    // distinct product behavior for locked accounts
//	}
//
// Errors map to HTTP status codes via MapCodeToHTTPStatus; the HTTP layer
// exposes the code itself in the response body so API clients can tell
// INVALID_CREDENTIALS from ACCOUNT_LOCKED even though both are 401.
package errs
