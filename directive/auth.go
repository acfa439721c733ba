// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/request"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BasicAuth sets HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

func (BasicAuth) Name() string        { return "apix.Auth" }
func (BasicAuth) Order() int          { return OrderAuth }
func (BasicAuth) AllowMultiple() bool { return false }
func (BasicAuth) Scopes() Scope       { return Interface | Method }

func (b BasicAuth) OnRequest(c *request.Call) error {
	c.Plan.SetBasicAuth(b.Username, b.Password)
	return nil
}

// JWTBearer mints a short-lived JSON Web Token for every call and sends
// it as a bearer token in the Authorization header.
//
// BasicAuth and JWTBearer share a Name, so a method-level instance of
// either replaces an interface-level instance of the other.
type JWTBearer struct {
	// Method is the signing method. Nil means HS256.
	Method jwt.SigningMethod
	// Key is the signing key, of the type Method expects: a []byte for
	// the HMAC methods, a private key for the others.
	Key interface{}
	// Issuer, Subject and Audience fill in the registered claims of
	// the same names when not empty.
	Issuer   string
	Subject  string
	Audience []string
	// TTL sets the "exp" claim relative to the time of the call. Zero
	// means one minute.
	TTL time.Duration
	// Clock is the time source for "iat" and "exp". Nil means the wall
	// clock.
	Clock clock.Clock
}

func (JWTBearer) Name() string        { return "apix.Auth" }
func (JWTBearer) Order() int          { return OrderAuth }
func (JWTBearer) AllowMultiple() bool { return false }
func (JWTBearer) Scopes() Scope       { return Interface | Method }

func (j JWTBearer) Check() error {
	if j.Key == nil {
		return errors.New("nil signing key")
	}
	if j.TTL < 0 {
		return errors.New("negative token TTL")
	}
	return nil
}

func (j JWTBearer) OnRequest(c *request.Call) error {
	token, err := j.Mint()
	if err != nil {
		return err
	}
	c.Plan.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// Mint returns a new signed token.
func (j JWTBearer) Mint() (string, error) {
	method := j.Method
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	clk := j.Clock
	if clk == nil {
		clk = clock.New()
	}
	ttl := j.TTL
	if ttl == 0 {
		ttl = time.Minute
	}
	now := clk.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	if j.Issuer != "" {
		claims["iss"] = j.Issuer
	}
	if j.Subject != "" {
		claims["sub"] = j.Subject
	}
	if len(j.Audience) > 0 {
		claims["aud"] = j.Audience
	}
	return jwt.NewWithClaims(method, claims).SignedString(j.Key)
}
