// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "sambacc_flash"

// flashCodec signs the one-shot flash cookie so a tampered message is
// dropped instead of rendered. The key comes from the configured secret;
// without one a random per-process key is used, which still signs but
// does not survive restarts.
type flashCodec struct {
	key []byte
}

func newFlashCodec(secretKey string) *flashCodec {
	if secretKey != "" {
		return &flashCodec{key: []byte(secretKey)}
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate flash signing key: " + err.Error())
	}
	return &flashCodec{key: key}
}

func (f *flashCodec) sign(message string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString([]byte(message)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify returns the message and whether the signature checks out.
func (f *flashCodec) verify(value string) (string, bool) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return "", false
	}

	message, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", false
	}

	mac := hmac.New(sha256.New, f.key)
	mac.Write(message)
	if subtle.ConstantTimeCompare(signature, mac.Sum(nil)) != 1 {
		return "", false
	}
	return string(message), true
}

// setFlash stores a signed one-shot message for the next page render.
func (f *flashCodec) setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookieName, f.sign(message), 60, "/", "", false, true)
}

// takeFlash returns the flash message, if any, and clears the cookie.
func (f *flashCodec) takeFlash(c *gin.Context) string {
	value, err := c.Cookie(flashCookieName)
	if err == http.ErrNoCookie || value == "" {
		return ""
	}

	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	message, ok := f.verify(value)
	if !ok {
		return ""
	}
	return message
}
