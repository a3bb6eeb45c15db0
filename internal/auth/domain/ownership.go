package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CanonicalID renders an identifier coming from any storage layer in one
// string form: integers in base 10, numeric strings without padding, other
// strings trimmed. Nil and unsupported values yield "".
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return canonicalString(id)
	case *string:
		if id == nil {
			return ""
		}
		return canonicalString(*id)
	case int:
		return strconv.FormatInt(int64(id), 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case *uint:
		if id == nil {
			return ""
		}
		return strconv.FormatUint(uint64(*id), 10)
	case fmt.Stringer:
		return canonicalString(id.String())
	default:
		return ""
	}
}

func canonicalString(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return strconv.FormatUint(n, 10)
	}
	return s
}

// IsOwner reports whether identity owns a resource whose owner id is ownerID.
// An empty id on either side never matches.
func IsOwner(identity Identity, ownerID any) bool {
	actor := CanonicalID(identity.ID)
	owner := CanonicalID(ownerID)
	return actor != "" && actor == owner
}
