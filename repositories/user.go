//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByID(ctx context.Context, id domain.UserID) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	// GetUsersByIDs omits unknown ids from the result.
	GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error)
	ListUsers(ctx context.Context, exclude domain.UserID) ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRecord struct {
	ID           string `cbor:"id"`
	Username     string `cbor:"username"`
	Email        string `cbor:"email"`
	PasswordHash string `cbor:"password_hash"`
	CreatedAt    int64  `cbor:"created_at"`
}

// CreateUser persists the user and its username/email unique indexes in
// one transaction.
func (u *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	err := update(u.db, func(txn *badger.Txn) error {
		for _, key := range []string{usernameKey(user.Username), emailKey(user.Email)} {
			if _, err := txn.Get([]byte(key)); err == nil {
				return errors.ErrUserAlreadyExists
			} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := txn.Set([]byte(usernameKey(user.Username)), []byte(user.ID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(emailKey(user.Email)), []byte(user.ID)); err != nil {
			return err
		}
		return setRecord(txn, userKey(user.ID), fromUser(user))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetUserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

func (u *UserRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(usernameKey(username)))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, domain.UserID(id))
		return err
	})
	return user, err
}

func (u *UserRepository) GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users := make(map[domain.UserID]domain.User, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range lo.Uniq(ids) {
			user, err := getUser(txn, id)
			if goerrors.Is(err, errors.ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = user
		}
		return nil
	})
	return users, err
}

// ListUsers returns every user but exclude, in id order.
func (u *UserRepository) ListUsers(ctx context.Context, exclude domain.UserID) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: []byte(userPrefix)})
		defer it.Close()
		for it.Seek([]byte(userPrefix)); it.ValidForPrefix([]byte(userPrefix)); it.Next() {
			var record userRecord
			if err := it.Item().Value(func(val []byte) error { return unmarshal(val, &record) }); err != nil {
				return err
			}
			if domain.UserID(record.ID) == exclude {
				continue
			}
			users = append(users, toUser(record))
		}
		return nil
	})
	return users, err
}

func getUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	var record userRecord
	err := getRecord(txn, userKey(id), &record)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func fromUser(user domain.User) userRecord {
	return userRecord{
		ID:           user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    toNano(user.CreatedAt),
	}
}

func toUser(record userRecord) domain.User {
	return domain.User{
		ID:           domain.UserID(record.ID),
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    fromNano(record.CreatedAt),
	}
}
