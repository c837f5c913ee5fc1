package repositories

import (
	"chat-hub/domain"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key layout. IDs are UUIDs and never contain ':'.
//
//	user:{userID}                          -> userRecord
//	username:{lower(username)}             -> userID
//	email:{lower(email)}                   -> userID
//	conv:{convID}                          -> conversationRecord
//	part:{convID}:{userID}                 -> participantRecord
//	member:{userID}:{convID}               -> (empty) reverse index
//	direct:{minUserID}:{maxUserID}         -> convID
//	msg:{msgID}                            -> messageRecord
//	convmsg:{convID}:{nanos019}:{msgID}    -> msgID, time ordered
const (
	userPrefix     = "user:"
	usernamePrefix = "username:"
	emailPrefix    = "email:"
	convPrefix     = "conv:"
	partPrefix     = "part:"
	memberPrefix   = "member:"
	directPrefix   = "direct:"
	msgPrefix      = "msg:"
	convMsgPrefix  = "convmsg:"
)

// maxConflictRetries bounds the retries of a read-write transaction that
// lost an optimistic concurrency race inside Badger.
const maxConflictRetries = 5

func userKey(id domain.UserID) string { return userPrefix + id.String() }
func usernameKey(username string) string {
	return usernamePrefix + strings.ToLower(username)
}
func emailKey(email string) string { return emailPrefix + strings.ToLower(email) }
func convKey(id domain.ConversationID) string { return convPrefix + id.String() }
func partPrefixFor(id domain.ConversationID) string { return partPrefix + id.String() + ":" }
func partKey(convID domain.ConversationID, userID domain.UserID) string {
	return partPrefixFor(convID) + userID.String()
}
func memberPrefixFor(id domain.UserID) string { return memberPrefix + id.String() + ":" }
func memberKey(userID domain.UserID, convID domain.ConversationID) string {
	return memberPrefixFor(userID) + convID.String()
}
func directKey(a, b domain.UserID) string { return directPrefix + domain.DirectPairKey(a, b) }
func msgKey(id domain.MessageID) string     { return msgPrefix + id.String() }
func convMsgPrefixFor(id domain.ConversationID) string {
	return convMsgPrefix + id.String() + ":"
}

// convMsgKey zero pads the timestamp to 19 digits so lexicographical
// order is chronological; the message id breaks ties.
func convMsgKey(convID domain.ConversationID, createdAtNano int64, msgID domain.MessageID) string {
	return fmt.Sprintf("%s%019d:%s", convMsgPrefixFor(convID), createdAtNano, msgID)
}

// update runs fn in a read-write transaction, retrying when Badger reports
// a conflict with a concurrent transaction.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// scanKeys returns the suffixes of every key under prefix, in key order.
func scanKeys(txn *badger.Txn, prefix string) []string {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	options.Prefix = []byte(prefix)
	it := txn.NewIterator(options)
	defer it.Close()

	var suffixes []string
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		suffixes = append(suffixes, string(it.Item().Key()[len(prefix):]))
	}
	return suffixes
}
