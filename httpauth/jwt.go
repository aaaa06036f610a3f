package httpauth

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	MaxSkew        = 15
	JWTPrefix      = "Bearer"
	PEMSecretLabel = "EC PRIVATE KEY"
	PEMPublicLabel = "EC PUBLIC KEY"
	DefaultAlg     = "ES256"
	Issuer         = "strata"
)

// JWT is the claim set of an admin token. The subject names the scope the
// token grants.
type JWT struct {
	Issuer         string `json:"iss"`
	Subject        string `json:"sub"`
	Algorithm      string `json:"alg"`
	IssuedAt       int64  `json:"iat"`
	ExpirationTime int64  `json:"exp,omitempty"`
	NotBefore      int64  `json:"nbf,omitempty"`
	Audience       string `json:"aud,omitempty"`
}

// GenerateJWTKeys makes a P-256 key pair, as base64 URL encoded x509 and as
// PEM.
func GenerateJWTKeys() (x509sec, x509pub, pemSec, pemPub by, sk *ecdsa.PrivateKey,
	pk ecdsa.PublicKey, err er) {

	if sk, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader); chk.E(err) {
		return
	}
	pk = sk.PublicKey
	var pkb by
	if pkb, err = x509.MarshalPKIXPublicKey(sk.Public()); chk.E(err) {
		return
	}
	x509pub = by(base64.URLEncoding.EncodeToString(pkb))
	var skb by
	if skb, err = x509.MarshalECPrivateKey(sk); chk.E(err) {
		return
	}
	x509sec = by(base64.URLEncoding.EncodeToString(skb))
	bufS := new(bytes.Buffer)
	if err = pem.Encode(bufS, &pem.Block{Type: PEMSecretLabel, Bytes: skb}); chk.E(err) {
		return
	}
	pemSec = bufS.Bytes()
	bufP := new(bytes.Buffer)
	if err = pem.Encode(bufP, &pem.Block{Type: PEMPublicLabel, Bytes: pkb}); chk.E(err) {
		return
	}
	pemPub = bufP.Bytes()
	return
}

// ParseSecret decodes a base64 URL encoded x509 EC private key.
func ParseSecret(x509sec st) (sk *ecdsa.PrivateKey, err er) {
	var skb by
	if skb, err = base64.URLEncoding.DecodeString(x509sec); chk.E(err) {
		return
	}
	return x509.ParseECPrivateKey(skb)
}

// ParsePublic decodes a base64 URL encoded x509 EC public key.
func ParsePublic(x509pub st) (pk *ecdsa.PublicKey, err er) {
	var pkb by
	if pkb, err = base64.URLEncoding.DecodeString(x509pub); chk.E(err) {
		return
	}
	var key any
	if key, err = x509.ParsePKIXPublicKey(pkb); chk.E(err) {
		return
	}
	var ok bo
	if pk, ok = key.(*ecdsa.PublicKey); !ok {
		err = errorf.E("public key is a %T, not ECDSA", key)
	}
	return
}

// GenerateJWTClaims makes the claims of a token for the subject, expiring
// after the optional duration.
func GenerateJWTClaims(subject st, exp ...st) (tok by, err er) {
	claim := &JWT{
		Issuer:    Issuer,
		Subject:   subject,
		Algorithm: DefaultAlg,
		IssuedAt:  time.Now().Unix(),
	}
	if len(exp) > 0 && exp[0] != "" {
		var dur time.Duration
		if dur, err = time.ParseDuration(exp[0]); chk.E(err) {
			return
		}
		claim.ExpirationTime = claim.IssuedAt + int64(dur/time.Second)
	}
	if tok, err = json.Marshal(claim); chk.E(err) {
		return
	}
	return
}

// SignJWTtoken signs the claims, the result goes after JWTPrefix in the
// Authorization header.
func SignJWTtoken(tok by, sec *ecdsa.PrivateKey) (headerEntry st, err er) {
	claims := new(JWT)
	if err = json.Unmarshal(tok, claims); chk.E(err) {
		return
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(claims.Algorithm), claims)
	if headerEntry, err = token.SignedString(sec); chk.E(err) {
		return
	}
	return
}

// VerifyJWTtoken checks the signature of a token, that it was issued for the
// subject, and that it has not expired. A token without an expiry must have
// been issued within MaxSkew seconds.
func VerifyJWTtoken(entry, subject st, pub *ecdsa.PublicKey) (valid bo, err er) {
	claims := new(JWT)
	var token *jwt.Token
	if token, err = jwt.ParseWithClaims(entry, claims,
		func(token *jwt.Token) (key any, err error) { return pub, nil },
		jwt.WithValidMethods([]string{DefaultAlg}),
		jwt.WithoutClaimsValidation()); err != nil {
		return
	}
	if claims.Issuer != Issuer {
		err = errors.Wrapf(jwt.ErrTokenInvalidClaims, "expected issuer %s, got %s",
			Issuer, claims.Issuer)
		return
	}
	if claims.Subject != subject {
		err = errors.Wrapf(jwt.ErrTokenInvalidClaims, "token is for %s, not %s",
			claims.Subject, subject)
		return
	}
	now := time.Now().Unix()
	if claims.ExpirationTime != 0 {
		if cmp := now - claims.ExpirationTime; cmp > MaxSkew {
			err = errors.Wrapf(jwt.ErrTokenExpired, "%ds since expiry", cmp)
			return
		}
	} else if cmp := now - claims.IssuedAt; cmp > MaxSkew || cmp < -MaxSkew {
		err = errors.Wrapf(jwt.ErrTokenInvalidClaims,
			"issued at is %d seconds skewed", cmp)
		return
	}
	valid = token.Valid
	return
}
