package httpauth

import (
	"crypto/ecdsa"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const HeaderKey = "Authorization"

// ErrMissingKey is returned when a request carries no token.
var ErrMissingKey = errors.New("authorization header missing")

// CheckAuth verifies the bearer token of a request against the public key
// for the given scope.
func CheckAuth(r *http.Request, scope st, pub *ecdsa.PublicKey) (valid bo, err er) {
	val := r.Header.Get(HeaderKey)
	if val == "" {
		err = ErrMissingKey
		return
	}
	split := strings.Fields(val)
	if len(split) != 2 || split[0] != JWTPrefix {
		err = errorf.E("invalid '%s' value, expected '%s <token>'", HeaderKey, JWTPrefix)
		return
	}
	return VerifyJWTtoken(split[1], scope, pub)
}

// AddAuth signs a token for the scope, expiring after exp, and sets it on
// the request.
func AddAuth(r *http.Request, scope, exp st, sec *ecdsa.PrivateKey) (err er) {
	var tok by
	if tok, err = GenerateJWTClaims(scope, exp); err != nil {
		return
	}
	var entry st
	if entry, err = SignJWTtoken(tok, sec); err != nil {
		return
	}
	r.Header.Set(HeaderKey, JWTPrefix+" "+entry)
	return
}
