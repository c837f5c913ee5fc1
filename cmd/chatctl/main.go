package main

import (
	"chat-hub/client"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/internal"
	"chat-hub/projection"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	flag "github.com/spf13/pflag"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string        `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	Token     string        `env:"CHAT_TOKEN"`
	Timeout   time.Duration `env:"CHAT_TIMEOUT,default=10s"`
	LogLevel  string        `env:"LOG_LEVEL,default=WARN"`
}

const usage = `usage: chatctl <command> [flags] [args]

commands:
  signup         --email --username --password
  login          --username --password
  users
  conversations  [--search term]
  history        <conversationId>
  send           <conversationId> <content...>
  direct         <userId>
  group          [--name name] <userId...>
  tail           <conversationId...>
`

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("chatctl: %v", err))
	}
	os.Exit(code)
}

func run(args []string, out io.Writer) (int, error) {
	var config Config
	if err := internal.LoadConfig(&config, ".env"); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return exitConfig, nil
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	command, args := args[0], args[1:]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	token := fs.String("token", config.Token, "Access token, defaults to CHAT_TOKEN")
	server := fs.String("server", config.ServerURL, "Server root URL")
	email := fs.String("email", "", "Account email")
	username := fs.String("username", "", "Account username")
	password := fs.String("password", "", "Account password")
	search := fs.String("search", "", "Group name filter")
	name := fs.String("name", "", "Group name")
	if err := fs.Parse(args); err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c := client.New(*server, nil).WithToken(*token)
	log.Debug("Running command", "command", command, "server", *server)

	// tail runs until interrupted, everything else is bounded
	if command == "tail" {
		return result(tail(ctx, c, fs.Args(), out))
	}
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	switch command {
	case "signup":
		session, err := c.Signup(ctx, *email, *username, *password)
		if err != nil {
			return exitRuntime, err
		}
		printSession(out, session)
	case "login":
		session, err := c.Login(ctx, *username, *password)
		if err != nil {
			return exitRuntime, err
		}
		printSession(out, session)
	case "users":
		users, err := c.ListUsers(ctx)
		if err != nil {
			return exitRuntime, err
		}
		printUsers(out, users)
	case "conversations":
		list := c.ListConversations
		if *search != "" {
			list = func(ctx context.Context) ([]domain.ConversationSummary, error) {
				return c.SearchConversations(ctx, *search)
			}
		}
		summaries, err := list(ctx)
		if err != nil {
			return exitRuntime, err
		}
		printConversations(out, summaries)
	case "history":
		if fs.NArg() != 1 {
			return exitConfig, fmt.Errorf("history needs a conversation id")
		}
		messages, err := c.ListMessages(ctx, domain.ConversationID(fs.Arg(0)))
		if err != nil {
			return exitRuntime, err
		}
		printMessages(out, messages)
	case "send":
		if fs.NArg() < 2 {
			return exitConfig, fmt.Errorf("send needs a conversation id and a content")
		}
		message, err := c.SendMessage(ctx, domain.ConversationID(fs.Arg(0)), strings.Join(fs.Args()[1:], " "))
		if err != nil {
			return exitRuntime, err
		}
		printMessages(out, []domain.MessagePayload{message})
	case "direct":
		if fs.NArg() != 1 {
			return exitConfig, fmt.Errorf("direct needs a user id")
		}
		id, err := c.CreateDirect(ctx, domain.UserID(fs.Arg(0)))
		if err != nil {
			return exitRuntime, err
		}
		fmt.Fprintln(out, id)
	case "group":
		if fs.NArg() == 0 {
			return exitConfig, fmt.Errorf("group needs at least one user id")
		}
		participants := lo.Map(fs.Args(), func(id string, _ int) domain.UserID { return domain.UserID(id) })
		id, err := c.CreateGroup(ctx, lo.EmptyableToPtr(*name), participants)
		if err != nil {
			return exitRuntime, err
		}
		fmt.Fprintln(out, id)
	default:
		fmt.Fprint(out, usage)
		return exitConfig, fmt.Errorf("unknown command %q", command)
	}
	return exitOK, nil
}

func result(err error) (int, error) {
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

// tail joins every conversation and prints events until ctx ends. Edits
// and deletions are shown against the local timeline.
func tail(ctx context.Context, c *client.Client, ids []string, out io.Writer) error {
	if len(ids) == 0 {
		return fmt.Errorf("tail needs at least one conversation id")
	}
	timeline := projection.NewTimeline()
	for _, id := range ids {
		history, err := c.ListMessages(ctx, domain.ConversationID(id))
		if err != nil {
			return err
		}
		timeline.Seed(domain.ConversationID(id), history)
	}
	stream, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()
	for _, id := range ids {
		if err := stream.Join(ctx, domain.ConversationID(id)); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, color.Gray.Sprintf(">>> Listening to %s (Ctrl+C to quit)", strings.Join(ids, ", ")))
	for {
		frame, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, formatFrame(timeline, frame))
	}
}

func formatFrame(timeline *projection.Timeline, frame client.Frame) string {
	e, err := frame.Decode()
	if err != nil {
		return color.Red.Sprintf("undecodable %s: %v", frame.Event, err)
	}
	// The previous state is needed to show what a deletion removed
	before := timeline.Messages(e.ConversationID())
	_ = timeline.Consume(context.Background(), e)

	switch evt := e.(type) {
	case event.MessageCreated:
		return formatMessage(evt.Payload)
	case event.MessageEdited:
		return formatMessage(evt.Payload) + color.Yellow.Sprint(" (edited)")
	case event.MessageDeleted:
		removed, ok := lo.Find(before, func(m domain.MessagePayload) bool { return m.ID == evt.Marker.ID })
		if !ok {
			return color.Gray.Sprintf("%s message %s deleted", evt.Marker.ConversationID, evt.Marker.ID)
		}
		return color.Gray.Sprintf("%s message %s deleted: %s", evt.Marker.ConversationID, evt.Marker.ID, removed.Content)
	default:
		return color.Gray.Sprintf("%s %s", frame.Event, frame.Data)
	}
}

func formatMessage(m domain.MessagePayload) string {
	return fmt.Sprintf("[%s] %s %s: %s", m.CreatedAt.Local().Format("15:04:05"), m.ConversationID,
		color.Cyan.Sprint(m.Sender.Username), m.Content)
}

func printSession(out io.Writer, session domain.AuthSession) {
	fmt.Fprintln(out, color.Green.Sprintf("Signed in as %s (%s)", session.User.Username, session.User.ID))
	fmt.Fprintf(out, "export CHAT_TOKEN=%s\n", session.AccessToken)
}

func printUsers(out io.Writer, users []domain.PublicUser) {
	table := newTable(out, "ID", "Username", "Email")
	for _, u := range users {
		table.Append([]string{u.ID.String(), u.Username, u.Email})
	}
	table.Render()
}

func printConversations(out io.Writer, summaries []domain.ConversationSummary) {
	table := newTable(out, "ID", "Title", "Type", "Members", "Updated", "Last message")
	for _, s := range summaries {
		kind := lo.Ternary(s.IsGroup, "group", "direct")
		last := ""
		if s.LastMessage != nil {
			last = s.LastMessage.Sender.Username + ": " + s.LastMessage.Content
		}
		table.Append([]string{s.ID.String(), s.Title, kind, fmt.Sprint(len(s.Participants)),
			s.UpdatedAt.Local().Format(time.DateTime), last})
	}
	table.Render()
}

func printMessages(out io.Writer, messages []domain.MessagePayload) {
	table := newTable(out, "ID", "At", "Sender", "Content")
	for _, m := range messages {
		table.Append([]string{m.ID.String(), m.CreatedAt.Local().Format(time.DateTime), m.Sender.Username, m.Content})
	}
	table.Render()
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	return table
}
