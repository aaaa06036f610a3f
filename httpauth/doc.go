// Package httpauth issues and checks the ES256 JSON web tokens that guard the
// administrative operations of the HTTP API. The server holds only the public
// key, tokens are minted offline with the secret key.
package httpauth
