package auth

import "golang.org/x/crypto/bcrypt"

// Passwords are stored in plain text by default for compatibility with
// the legacy database; see the hash_passwords config switch for the
// explicit upgrade path.

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummyHash is compared against when the username lookup misses, so a
// failed login costs the same whether the username or the password was
// wrong. bcrypt hash of an unguessable throwaway value.
var dummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("remindex-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()
