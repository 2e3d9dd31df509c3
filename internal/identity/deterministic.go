package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const subjectNamespace = "notes:account:"

// AccountID maps a token subject onto an account id. UUID subjects are used
// as-is; any other non-empty subject (an email, an external provider id) is
// hashed into a stable UUID with go-hashid.
func AccountID(subject string) uuid.UUID {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return uuid.Nil
	}
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed
	}
	key := subjectNamespace + strings.ToLower(trimmed)
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid
}
