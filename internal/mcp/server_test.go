package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/logging"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

const ahmedProfile = `profile:
  target_roles: ["AI Engineer"]
  skills:
    primary: ["Machine Learning"]
    technologies: ["Python"]
config:
  matching_threshold: 50
  max_jobs_per_day: 5
`

var aramco = job.Posting{
	Title:       "AI Engineer",
	Company:     "Aramco",
	Location:    "Riyadh",
	URL:         "https://jobs.example.com/aramco-ai",
	Description: "Python, Machine Learning",
}

type testServer struct {
	*Server
	db    *database.DB
	store *recency.FileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Users.Dir = filepath.Join(dir, "users")
	require.NoError(t, os.MkdirAll(cfg.Users.Dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Users.Dir, "ahmed.yaml"), []byte(ahmedProfile), 0644))

	db, err := database.Open(filepath.Join(dir, "jobmatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := recency.NewFileStore(filepath.Join(dir, "recency.json"))
	return &testServer{
		Server: New(cfg, db, store, logging.Discard()),
		db:     db,
		store:  store,
	}
}

// exchange sends one JSON-RPC line per request and decodes one response per line
func (s *testServer) exchange(t *testing.T, requests ...string) []jsonRPCResponse {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	require.NoError(t, s.Serve(context.Background(), in, &out))

	var responses []jsonRPCResponse
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var resp jsonRPCResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

// callTool invokes a tool and returns its text content
func (s *testServer) callTool(t *testing.T, name string, args interface{}) (string, bool) {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)
	req, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	require.NoError(t, err)

	responses := s.exchange(t, string(req))
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	var result callToolResult
	remarshal(t, responses[0].Result, &result)
	require.Len(t, result.Content, 1)
	return result.Content[0].Text, result.IsError
}

func remarshal(t *testing.T, in, out interface{}) {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestServe_Protocol(t *testing.T) {
	s := newTestServer(t)

	responses := s.exchange(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"bogus"}`,
		`not json`,
	)
	require.Len(t, responses, 4)

	var initResult initializeResult
	remarshal(t, responses[0].Result, &initResult)
	assert.Equal(t, "jobmatch", initResult.ServerInfo.Name)
	assert.Equal(t, Version, initResult.ServerInfo.Version)

	var tools toolsListResult
	remarshal(t, responses[1].Result, &tools)
	assert.Len(t, tools.Tools, len(ToolDefinitions))

	require.NotNil(t, responses[2].Error)
	assert.Equal(t, -32601, responses[2].Error.Code)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, -32700, responses[3].Error.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEveryToolHasHandler(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range ToolDefinitions {
		assert.Contains(t, s.handlers, tool.Name)
	}
}

func TestTool_Unknown(t *testing.T) {
	s := newTestServer(t)
	responses := s.exchange(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, -32602, responses[0].Error.Code)
}

func TestTool_ScorePosting(t *testing.T) {
	s := newTestServer(t)

	text, isErr := s.callTool(t, "score_posting", map[string]interface{}{
		"username": "ahmed",
		"posting":  aramco,
	})
	require.False(t, isErr, text)

	var got scorePostingResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, 58, got.Score)
	assert.Equal(t, 40, got.Breakdown.Title)
	assert.Equal(t, 50, got.Threshold)
	assert.True(t, got.Passes)
	assert.Len(t, got.Reasons, 4)
}

func TestTool_ScorePosting_UnknownUser(t *testing.T) {
	s := newTestServer(t)
	text, isErr := s.callTool(t, "score_posting", map[string]interface{}{
		"username": "omar",
		"posting":  aramco,
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "user not found")
}

func TestTool_MatchPostings_DoesNotMark(t *testing.T) {
	s := newTestServer(t)

	text, isErr := s.callTool(t, "match_postings", map[string]interface{}{
		"postings": []job.Posting{aramco, aramco},
	})
	require.False(t, isErr, text)

	var got matchPostingsResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, 2, got.PostingsIn)
	assert.Equal(t, 1, got.PostingsUnique)
	require.Len(t, got.Results, 1)
	require.Len(t, got.Results[0].Jobs, 1)
	assert.Equal(t, aramco.URL, got.Results[0].Jobs[0].URL)

	entries, err := s.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTool_MatchPostings_RequiresInput(t *testing.T) {
	s := newTestServer(t)
	text, isErr := s.callTool(t, "match_postings", map[string]interface{}{})
	assert.True(t, isErr)
	assert.Contains(t, text, "required")
}

func TestTool_RecentlyShownAndForget(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	cache := recency.Load(ctx, s.store, recency.Options{Logger: logging.Discard()})
	cache.MarkAsShown(aramco, "ahmed")
	require.NoError(t, cache.Save(ctx))

	text, isErr := s.callTool(t, "recently_shown", map[string]interface{}{"username": "ahmed"})
	require.False(t, isErr, text)
	var shown []recency.Entry
	require.NoError(t, json.Unmarshal([]byte(text), &shown))
	require.Len(t, shown, 1)
	assert.Equal(t, aramco.URL, shown[0].URL)

	text, _ = s.callTool(t, "recently_shown", map[string]interface{}{"username": "sara"})
	assert.Equal(t, "[]", text)

	text, isErr = s.callTool(t, "forget_posting", map[string]interface{}{"url": aramco.URL})
	require.False(t, isErr)
	assert.Equal(t, "Forgot "+aramco.URL, text)

	text, _ = s.callTool(t, "forget_posting", map[string]interface{}{"url": aramco.URL})
	assert.Equal(t, "Not in cache: "+aramco.URL, text)
}

func TestTool_GetRunHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	started := time.Now().Add(-time.Hour)
	require.NoError(t, s.db.CreateMatchRun(ctx, &database.MatchRun{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Input:      4,
		Unique:     2,
		Users:      1,
		Selected:   1,
		Delivered:  1,
	}))

	text, isErr := s.callTool(t, "get_run_history", map[string]interface{}{"since_days": 7})
	require.False(t, isErr, text)

	var got runHistoryResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	require.Len(t, got.Runs, 1)
	assert.Equal(t, "run-1", got.Runs[0].ID)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 1, got.Stats.TotalRuns)
	assert.Equal(t, 1, got.Stats.TotalDelivered)
}

func TestReadResource(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	text, err := s.handleReadResource(ctx, "jobmatch://users")
	require.NoError(t, err)
	assert.Contains(t, text, "ahmed")

	text, err = s.handleReadResource(ctx, "jobmatch://cache")
	require.NoError(t, err)
	assert.Contains(t, text, "Recency cache is empty.")

	text, err = s.handleReadResource(ctx, "jobmatch://history")
	require.NoError(t, err)
	assert.Contains(t, text, "No runs recorded.")

	_, err = s.handleReadResource(ctx, "jobmatch://nope")
	assert.Error(t, err)
}
