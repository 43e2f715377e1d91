package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// URL returns the default avatar for a user id. Deterministic, so the same
// id always gets the same picture.
func URL(id string) string {
	sum := md5.Sum([]byte(id))

	return fmt.Sprintf("https://gravatar.com/avatar/%s?s=200&d=retro", hex.EncodeToString(sum[:]))
}
