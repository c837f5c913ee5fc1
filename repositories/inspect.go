package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Entry is a human readable view of one stored key.
type Entry struct {
	Key    string
	Kind   string
	At     time.Time
	Detail string
}

// Scan walks every key under prefix and describes it. A zero limit means
// no limit.
func Scan(db *badger.DB, prefix string, limit int) ([]Entry, error) {
	var entries []Entry
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(entries) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				entries = append(entries, Describe(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// Describe decodes value according to the key layout. Undecodable
// records are reported with kind "corrupt" instead of failing.
func Describe(key string, value []byte) Entry {
	entry := Entry{Key: key}
	var err error
	switch {
	case strings.HasPrefix(key, userPrefix):
		var r userRecord
		if err = unmarshal(value, &r); err == nil {
			entry.Kind, entry.At = "USER", fromNano(r.CreatedAt)
			entry.Detail = fmt.Sprintf("%s <%s>", r.Username, r.Email)
		}
	case strings.HasPrefix(key, convPrefix):
		var r conversationRecord
		if err = unmarshal(value, &r); err == nil {
			entry.Kind, entry.At = "DIRECT", fromNano(r.UpdatedAt)
			if r.IsGroup {
				entry.Kind = "GROUP"
			}
			if r.Name != nil {
				entry.Detail = *r.Name
			}
		}
	case strings.HasPrefix(key, partPrefix):
		var r participantRecord
		if err = unmarshal(value, &r); err == nil {
			entry.Kind, entry.At = "PARTICIPANT", fromNano(r.JoinedAt)
		}
	case strings.HasPrefix(key, msgPrefix):
		var r messageRecord
		if err = unmarshal(value, &r); err == nil {
			entry.Kind, entry.At = "MESSAGE", fromNano(r.CreatedAt)
			entry.Detail = fmt.Sprintf("%s: %s", r.SenderID, r.Content)
		}
	case strings.HasPrefix(key, usernamePrefix), strings.HasPrefix(key, emailPrefix),
		strings.HasPrefix(key, directPrefix), strings.HasPrefix(key, convMsgPrefix):
		entry.Kind, entry.Detail = "INDEX", string(value)
	case strings.HasPrefix(key, memberPrefix):
		entry.Kind = "INDEX"
	default:
		entry.Kind = "UNKNOWN"
	}
	if err != nil {
		entry.Kind, entry.Detail = "corrupt", err.Error()
	}
	return entry
}
