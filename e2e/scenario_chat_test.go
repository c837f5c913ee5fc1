package e2e

import (
	"chat-hub/client"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestGroupConversationFlow() {
	var alice, bob *client.Client
	var bobUser domain.PublicUser
	var aliceStream, bobStream *client.Stream
	var group domain.ConversationID

	s.Step("Sign up two accounts", func(ctx context.Context) {
		alice, _ = s.SignupRandom(ctx, "alice")
		bob, bobUser = s.SignupRandom(ctx, "bob")
	})

	s.Step("Alice creates a group with Bob", func(ctx context.Context) {
		var err error
		group, err = alice.CreateGroup(ctx, lo.ToPtr("e2e "+bobUser.Username), []domain.UserID{bobUser.ID})
		s.Require().NoError(err)
	})

	s.Step("Both sessions join the group", func(ctx context.Context) {
		var err error
		aliceStream, err = alice.Connect(context.Background())
		s.Require().NoError(err)
		bobStream, err = bob.Connect(context.Background())
		s.Require().NoError(err)
		// A session's own probe comes back only once its join was applied
		for _, stream := range []*client.Stream{aliceStream, bobStream} {
			s.Require().NoError(stream.Join(ctx, group))
			probe := "ready " + uuid.NewString()
			s.Require().NoError(stream.Send(ctx, group, probe))
			s.awaitContents(ctx, stream, probe)
		}
	})
	defer func() {
		if aliceStream != nil {
			_ = aliceStream.Close()
		}
		if bobStream != nil {
			_ = bobStream.Close()
		}
	}()

	s.Step("A message over REST reaches both sessions in order", func(ctx context.Context) {
		for _, content := range []string{"one", "two", "three"} {
			_, err := alice.SendMessage(ctx, group, content)
			s.Require().NoError(err)
		}
		for _, stream := range []*client.Stream{aliceStream, bobStream} {
			s.awaitContents(ctx, stream, "one", "two", "three")
		}
	})

	s.Step("History and listing reflect the messages", func(ctx context.Context) {
		messages, err := bob.ListMessages(ctx, group)
		s.Require().NoError(err)
		s.Require().GreaterOrEqual(len(messages), 1)
		s.Require().Equal("three", messages[len(messages)-1].Content)

		summaries, err := bob.SearchConversations(ctx, "E2E "+bobUser.Username)
		s.Require().NoError(err)
		s.Require().Equal(group, summaries[0].ID)
		s.Require().Equal("three", summaries[0].LastMessage.Content)
	})
}

// awaitContents reads new messages until want arrived in that order,
// skipping probes.
func (s *testChatSuite) awaitContents(ctx context.Context, stream *client.Stream, want ...string) {
	var got []string
	for len(got) < len(want) {
		frame, err := stream.Next(ctx)
		s.Require().NoError(err)
		if frame.Event != event.KindNewMessage {
			continue
		}
		var m domain.MessagePayload
		s.Require().NoError(json.Unmarshal(frame.Data, &m))
		if strings.HasPrefix(m.Content, "ready ") && !lo.Contains(want, m.Content) {
			continue
		}
		got = append(got, m.Content)
	}
	s.Require().Equal(want, got)
}
