package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUsers(t *testing.T, repo *UserRepository, names ...string) []domain.User {
	t.Helper()
	users := make([]domain.User, 0, len(names))
	for i, name := range names {
		user, err := repo.CreateUser(context.Background(), domain.User{
			ID:           domain.UserID("u-" + name),
			Username:     name,
			Email:        name + "@chat.test",
			PasswordHash: "hash",
			CreatedAt:    at.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		users = append(users, user)
	}
	return users
}

func TestUserRepository_UniqueUsernameAndEmail(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewUserRepository(openDB(t))
	seedUsers(t, repo, "alice")

	// When another account reuses the username with a different case
	_, err := repo.CreateUser(ctx, domain.User{ID: "u-2", Username: "ALICE", Email: "other@chat.test"})
	// Then it is a conflict
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// When another account reuses the email
	_, err = repo.CreateUser(ctx, domain.User{ID: "u-3", Username: "bob", Email: "Alice@chat.test"})
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	user, err := repo.GetUserByUsername(ctx, "Alice")
	req.NoError(err)
	req.Equal(domain.UserID("u-alice"), user.ID)
	req.Equal(at, user.CreatedAt)
}

func TestUserRepository_ListAndLookup(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewUserRepository(openDB(t))
	seedUsers(t, repo, "alice", "bob", "carol")

	users, err := repo.ListUsers(ctx, "u-bob")
	req.NoError(err)
	req.Equal([]string{"alice", "carol"}, lo.Map(users, func(u domain.User, _ int) string { return u.Username }))

	byID, err := repo.GetUsersByIDs(ctx, []domain.UserID{"u-alice", "u-ghost", "u-alice"})
	req.NoError(err)
	req.Len(byID, 1)
	req.Equal("alice", byID["u-alice"].Username)

	_, err = repo.GetUserByID(ctx, "u-ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestConversationRepository_DirectIsUniquePerPair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openDB(t))

	first, err := repo.CreateDirectConversation(ctx, domain.Conversation{ID: "c-1", CreatedAt: at, UpdatedAt: at}, "u-a", "u-b")
	req.NoError(err)
	req.False(first.IsGroup)
	req.ElementsMatch([]domain.UserID{"u-a", "u-b"}, first.ParticipantIDs())

	// When the pair is created again in the reverse order
	second, err := repo.CreateDirectConversation(ctx, domain.Conversation{ID: "c-2", CreatedAt: at, UpdatedAt: at}, "u-b", "u-a")
	// Then the first conversation is returned
	req.NoError(err)
	req.Equal(first.ID, second.ID)

	found, err := repo.FindDirectConversation(ctx, "u-b", "u-a")
	req.NoError(err)
	req.Equal(first.ID, found.ID)

	_, err = repo.FindDirectConversation(ctx, "u-a", "u-c")
	req.ErrorIs(err, errors.ErrConversationNotFound)
}

func TestConversationRepository_ConcurrentDirectCreationConverges(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openDB(t))

	const attempts = 8
	ids := make([]domain.ConversationID, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := repo.CreateDirectConversation(ctx, domain.Conversation{
				ID: domain.ConversationID("c-" + string(rune('a'+i))), CreatedAt: at, UpdatedAt: at,
			}, "u-a", "u-b")
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	req.Len(lo.Uniq(ids), 1)
	req.NotEmpty(ids[0])

	list, err := repo.ListConversationsForUser(ctx, "u-a")
	req.NoError(err)
	req.Len(list, 1)
}

func TestConversationRepository_GroupParticipants(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openDB(t))

	conv, err := repo.CreateGroupConversation(ctx,
		domain.Conversation{ID: "g-1", Name: lo.ToPtr("Team"), CreatedAt: at, UpdatedAt: at},
		[]domain.UserID{"u-a", "u-b", "u-a"})
	req.NoError(err)
	req.True(conv.IsGroup)
	req.ElementsMatch([]domain.UserID{"u-a", "u-b"}, conv.ParticipantIDs())

	// When an existing member and a new one are added
	later := at.Add(time.Minute)
	conv, err = repo.AddParticipants(ctx, "g-1", []domain.UserID{"u-b", "u-c"}, later)
	req.NoError(err)
	req.ElementsMatch([]domain.UserID{"u-a", "u-b", "u-c"}, conv.ParticipantIDs())
	req.Equal(later, conv.UpdatedAt)

	// When a member leaves
	req.NoError(repo.RemoveParticipant(ctx, "g-1", "u-b", later.Add(time.Minute)))
	conv, err = repo.GetConversation(ctx, "g-1")
	req.NoError(err)
	req.ElementsMatch([]domain.UserID{"u-a", "u-c"}, conv.ParticipantIDs())

	// Then leaving twice is refused
	req.ErrorIs(repo.RemoveParticipant(ctx, "g-1", "u-b", later), errors.ErrNotParticipant)

	list, err := repo.ListConversationsForUser(ctx, "u-b")
	req.NoError(err)
	req.Empty(list)

	_, err = repo.AddParticipants(ctx, "g-404", []domain.UserID{"u-a"}, later)
	req.ErrorIs(err, errors.ErrConversationNotFound)
}

func TestConversationRepository_EmptyGroupIsKept(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openDB(t))

	_, err := repo.CreateGroupConversation(ctx, domain.Conversation{ID: "g-1", CreatedAt: at, UpdatedAt: at}, []domain.UserID{"u-a"})
	req.NoError(err)
	req.NoError(repo.RemoveParticipant(ctx, "g-1", "u-a", at))

	conv, err := repo.GetConversation(ctx, "g-1")
	req.NoError(err)
	req.Empty(conv.Participants)
}

func TestConversationRepository_SearchOrdersByUpdate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openDB(t))

	for i, name := range []string{"Project alpha", "Lunch", "project beta"} {
		_, err := repo.CreateGroupConversation(ctx, domain.Conversation{
			ID:        domain.ConversationID("g-" + string(rune('1'+i))),
			Name:      lo.ToPtr(name),
			CreatedAt: at,
			UpdatedAt: at.Add(time.Duration(i) * time.Minute),
		}, []domain.UserID{"u-a"})
		req.NoError(err)
	}
	_, err := repo.RenameConversation(ctx, "g-1", "PROJECT alpha", at.Add(time.Hour))
	req.NoError(err)

	matches, err := repo.SearchConversationsForUser(ctx, "u-a", "project")
	req.NoError(err)
	req.Equal([]domain.ConversationID{"g-1", "g-3"}, lo.Map(matches, func(d domain.ConversationDetails, _ int) domain.ConversationID { return d.ID }))

	matches, err = repo.SearchConversationsForUser(ctx, "u-b", "project")
	req.NoError(err)
	req.Empty(matches)
}

func TestMessageRepository_OrderUpdateDelete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)
	convs := NewConversationRepository(db)
	messages := NewMessageRepository(db, slog.Default(), nil)

	_, err := convs.CreateDirectConversation(ctx, domain.Conversation{ID: "c-1", CreatedAt: at, UpdatedAt: at}, "u-a", "u-b")
	req.NoError(err)

	// Given three messages stored out of order
	for _, m := range []domain.Message{
		{ID: "m-2", ConversationID: "c-1", SenderID: "u-b", Content: "second", CreatedAt: at.Add(2 * time.Second)},
		{ID: "m-1", ConversationID: "c-1", SenderID: "u-a", Content: "first", CreatedAt: at.Add(time.Second)},
		{ID: "m-3", ConversationID: "c-1", SenderID: "u-a", Content: "third", CreatedAt: at.Add(3 * time.Second)},
	} {
		_, err = messages.CreateMessage(ctx, m)
		req.NoError(err)
	}

	// Then they are listed oldest first
	list, err := messages.ListMessages(ctx, "c-1")
	req.NoError(err)
	req.Equal([]string{"first", "second", "third"}, lo.Map(list, func(m domain.Message, _ int) string { return m.Content }))

	// And the conversation carries the newest one
	details, err := convs.ListConversationsForUser(ctx, "u-b")
	req.NoError(err)
	req.Len(details, 1)
	req.Equal(domain.MessageID("m-3"), details[0].LastMessage.ID)
	req.Equal(at.Add(3*time.Second), details[0].UpdatedAt)

	updated, err := messages.UpdateMessageContent(ctx, "m-1", "edited")
	req.NoError(err)
	req.Equal("edited", updated.Content)
	req.Equal(domain.UserID("u-a"), updated.SenderID)

	// When the newest message is deleted
	req.NoError(messages.DeleteMessage(ctx, "m-3"))
	_, err = messages.GetMessage(ctx, "m-3")
	req.ErrorIs(err, errors.ErrMessageNotFound)
	req.ErrorIs(messages.DeleteMessage(ctx, "m-3"), errors.ErrMessageNotFound)

	details, err = convs.ListConversationsForUser(ctx, "u-a")
	req.NoError(err)
	req.Equal(domain.MessageID("m-2"), details[0].LastMessage.ID)

	list, err = messages.ListMessages(ctx, "c-1")
	req.NoError(err)
	req.Equal([]string{"edited", "second"}, lo.Map(list, func(m domain.Message, _ int) string { return m.Content }))
}

func TestMessageRepository_Limit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)
	convs := NewConversationRepository(db)
	limit := 2
	messages := NewMessageRepository(db, slog.Default(), &limit)

	_, err := convs.CreateGroupConversation(ctx, domain.Conversation{ID: "g-1", CreatedAt: at, UpdatedAt: at}, []domain.UserID{"u-a"})
	req.NoError(err)
	for i, content := range []string{"one", "two", "three"} {
		_, err = messages.CreateMessage(ctx, domain.Message{
			ID:             domain.MessageID("m-" + content),
			ConversationID: "g-1",
			SenderID:       "u-a",
			Content:        content,
			CreatedAt:      at.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	// Then only the most recent ones are kept, still oldest first
	list, err := messages.ListMessages(ctx, "g-1")
	req.NoError(err)
	req.Equal([]string{"two", "three"}, lo.Map(list, func(m domain.Message, _ int) string { return m.Content }))
}

func TestMessageRepository_UnknownConversation(t *testing.T) {
	req := require.New(t)
	messages := NewMessageRepository(openDB(t), slog.Default(), nil)

	_, err := messages.CreateMessage(context.Background(), domain.Message{ID: "m-1", ConversationID: "c-404", CreatedAt: at})
	req.ErrorIs(err, errors.ErrConversationNotFound)

	list, err := messages.ListMessages(context.Background(), "c-404")
	req.NoError(err)
	req.Empty(list)
}

func TestScan_DescribesRecords(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)
	seedUsers(t, NewUserRepository(db), "alice")
	_, err := NewConversationRepository(db).CreateGroupConversation(ctx,
		domain.Conversation{ID: "g-1", Name: lo.ToPtr("Team"), CreatedAt: at, UpdatedAt: at}, []domain.UserID{"u-alice"})
	req.NoError(err)
	_, err = NewMessageRepository(db, slog.Default(), nil).CreateMessage(ctx,
		domain.Message{ID: "m-1", ConversationID: "g-1", SenderID: "u-alice", Content: "hi", CreatedAt: at})
	req.NoError(err)

	// When the whole store is scanned
	entries, err := Scan(db, "", 0)
	req.NoError(err)

	// Then every record is decoded by its key prefix
	byKey := lo.SliceToMap(entries, func(e Entry) (string, Entry) { return e.Key, e })
	req.Equal(Entry{Key: "user:u-alice", Kind: "USER", At: at, Detail: "alice <alice@chat.test>"}, byKey["user:u-alice"])
	req.Equal(Entry{Key: "conv:g-1", Kind: "GROUP", At: at, Detail: "Team"}, byKey["conv:g-1"])
	req.Equal(Entry{Key: "msg:m-1", Kind: "MESSAGE", At: at, Detail: "u-alice: hi"}, byKey["msg:m-1"])
	req.Equal(Entry{Key: "username:alice", Kind: "INDEX", Detail: "u-alice"}, byKey["username:alice"])
	req.Equal("PARTICIPANT", byKey["part:g-1:u-alice"].Kind)

	// When only one prefix is scanned with a limit
	entries, err = Scan(db, "user:", 1)
	req.NoError(err)
	req.Len(entries, 1)

	req.Equal("corrupt", Describe("msg:broken", []byte{0xff}).Kind)
}
