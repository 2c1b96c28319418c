// Package jwt issues and verifies the session marker tokens written next to
// the persisted session record on sign-in.
package jwt
