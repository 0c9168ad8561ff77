package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/app"
	"github.com/ganot/taskhours/internal/mcp"
	"github.com/ganot/taskhours/internal/sqlite"
	"github.com/ganot/taskhours/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestServer runs the full HTTP stack, MCP endpoint included, on an
// in-memory database.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Clock  *Clock
}

// New starts a server whose services all read time from the returned Clock.
func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clock := &Clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	a := app.New(db, app.Options{HashCost: bcrypt.MinCost, Clock: clock.Now})

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.MCPServices(),
		Resolver:      a.Users,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(a.HTTPServices(), transport.Options{MCP: mcpHandler}))
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, App: a, Clock: clock}
}

// Clock is a settable time source shared with the server goroutines.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Client is an HTTP client that keeps the session cookie between calls.
type Client struct {
	t      *testing.T
	base   string
	http   *http.Client
	Bearer string
}

// NewClient returns a client with an empty cookie jar.
func (ts *TestServer) NewClient(t *testing.T) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Client{t: t, base: ts.Server.URL, http: &http.Client{Jar: jar}}
}

// Do sends a JSON request and returns the status code and raw body.
func (c *Client) Do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

// JSON sends a request, requires the wanted status and decodes the body into out.
func (c *Client) JSON(method, path string, body any, want int, out any) {
	c.t.Helper()
	status, data := c.Do(method, path, body)
	require.Equal(c.t, want, status, string(data))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(data, out), string(data))
	}
}
