package login

// PasswordHasher hashes and verifies passwords.
//
// Verify reports a mismatch as (false, nil): a wrong password and a hash in
// an unreadable format both answer the same question the same way, so a
// stored-hash problem can never be told apart from a bad password by the
// caller. Only infrastructure failures surface as errors.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedPassword string) (bool, error)
}
