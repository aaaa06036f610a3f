package httpauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func (j *JWT) GetExpirationTime() (exp *jwt.NumericDate, err error) {
	if j.ExpirationTime == 0 {
		return
	}
	exp = jwt.NewNumericDate(time.Unix(j.ExpirationTime, 0))
	return
}

func (j *JWT) GetIssuedAt() (iat *jwt.NumericDate, err error) {
	iat = jwt.NewNumericDate(time.Unix(j.IssuedAt, 0))
	return
}

func (j *JWT) GetNotBefore() (nbf *jwt.NumericDate, err error) {
	if j.NotBefore == 0 {
		return
	}
	nbf = jwt.NewNumericDate(time.Unix(j.NotBefore, 0))
	return
}

func (j *JWT) GetIssuer() (iss string, err error) {
	iss = j.Issuer
	return
}

func (j *JWT) GetSubject() (sub string, err error) {
	sub = j.Subject
	return
}

func (j *JWT) GetAudience() (aud jwt.ClaimStrings, err error) {
	if j.Audience != "" {
		aud = jwt.ClaimStrings{j.Audience}
	}
	return
}
