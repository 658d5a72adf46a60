package users

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
)

const gravatarBase = "//www.gravatar.com/avatar/"

// AvatarURL returns the gravatar image for the email: 200px, pg rated, with
// the "mystery person" fallback.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(NormalizeEmail(email)))
	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")
	return gravatarBase + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
