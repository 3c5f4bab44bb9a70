package entity

import (
	"encoding/hex"

	"github.com/alexballas/xexplorer/cache"
)

// PubIDString encodes a binary pub_id as lowercase hex, two digits per byte,
// in the byte order of the id. The result is echoed to the backend, so the
// order must never change.
func PubIDString(pubID []byte) string {
	return hex.EncodeToString(pubID)
}

// IdentityOf returns the stable key of an item.
//
// Ephemeral paths are keyed by their path and spacedrop peers by their name;
// every other variant is keyed by the hex pub_id of its inner entity. The key
// survives refetches even though the item value itself is rebuilt each time.
func IdentityOf(item Item) string {
	return item.Identity()
}

// IdentityOfPubID keys a bare entity that carries a pub_id directly.
func IdentityOfPubID(rec cache.Record) string {
	return pubIDIdentity(rec)
}

func pubIDIdentity(rec cache.Record) string {
	b, _ := PubID(rec["pub_id"])
	return PubIDString(b)
}

// PubID converts the decoded forms a pub_id arrives in to bytes.
// JSON payloads decode it as a list of numbers.
func PubID(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case []int:
		out := make([]byte, len(t))
		for i, n := range t {
			if n < 0 || n > 255 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	case []any:
		out := make([]byte, len(t))
		for i, e := range t {
			n, ok := toInt(e)
			if !ok || n < 0 || n > 255 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
