package e2e

import (
	"bytes"
	"chat-hub/client"
	"chat-hub/domain"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("E2E_SERVER_URL not set")
	}
}

// Step prints a colorized header then runs fn with a bounded context.
func (s *BaseSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fn(ctx)
}

// NewClient returns a client whose HTTP calls are logged with their timing.
func (s *BaseSuite) NewClient() *client.Client {
	return client.New(s.Config.ServerURL, &http.Client{
		Transport: &loggingTransport{suite: s, next: http.DefaultTransport},
	})
}

// SignupRandom creates a fresh account and returns a client logged in as it.
func (s *BaseSuite) SignupRandom(ctx context.Context, prefix string) (*client.Client, domain.PublicUser) {
	name := prefix + uuid.NewString()[:8]
	c := s.NewClient()
	session, err := c.Signup(ctx, name+"@e2e.test", name, "E2e-Passw0rd!")
	s.Require().NoError(err)
	return c.WithToken(session.AccessToken), session.User
}

type loggingTransport struct {
	suite *BaseSuite
	next  http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.suite.T().Logf("HTTP %s %s failed in %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		return resp, err
	}
	t.suite.T().Logf("HTTP %s %s [%d] in %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	if t.suite.Config.DebugJSON && resp.StatusCode != http.StatusSwitchingProtocols {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		t.suite.T().Logf("RESPONSE:\n%s", body)
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}
