package stats

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

func IdempotentID(runID string, coords ...string) string {
	sum := sha1.New()
	_, err := sum.Write([]byte(runID + "#"))
	if err != nil {
		panic("problem generating hash")
	}
	_, err = sum.Write([]byte(strings.Join(coords, "\t")))
	if err != nil {
		panic("problem generating hash")
	}

	return hex.EncodeToString(sum.Sum(nil))
}
