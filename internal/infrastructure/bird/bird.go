// Package bird adapts the external Bird CLI into the search ports. The CLI
// is treated as an opaque binary that speaks JSON on stdout.
package bird

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

// Adapter shells out to the Bird CLI for search and auth status.
type Adapter struct {
	bin string
}

// New creates an adapter for the given binary name or path. The binary is
// resolved and checked at first use, not here, so a missing CLI surfaces as
// a search/status error rather than a startup failure.
func New(bin string) *Adapter {
	if bin == "" {
		bin = "bird"
	}
	return &Adapter{bin: bin}
}

// resolve locates the binary and rejects non-executable paths, in the same
// spirit as validating a plugin binary before launching it.
func (a *Adapter) resolve() (string, error) {
	path, err := exec.LookPath(a.bin)
	if err != nil {
		return "", fmt.Errorf("bird CLI not found: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid bird CLI path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access bird CLI: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("bird CLI path is a directory: %s", abs)
	}
	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return "", fmt.Errorf("bird CLI is not executable: %s", abs)
	}
	return abs, nil
}

func (a *Adapter) run(ctx context.Context, args ...string) ([]byte, error) {
	bin, err := a.resolve()
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("bird %s: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("bird %s: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}

// statusDoc is the shape of `bird auth status --json`.
type statusDoc struct {
	Authenticated bool   `json:"authenticated"`
	Handle        string `json:"handle"`
	Detail        string `json:"detail"`
}

// Status implements search.StatusReporter.
func (a *Adapter) Status(ctx context.Context) (*search.AuthStatus, error) {
	out, err := a.run(ctx, "auth", "status", "--json")
	if err != nil {
		return nil, err
	}

	var doc statusDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse bird auth status: %w", err)
	}
	return &search.AuthStatus{
		Authenticated: doc.Authenticated,
		Handle:        doc.Handle,
		Detail:        doc.Detail,
	}, nil
}

// tweetDoc is one entry of `bird search --json` output.
type tweetDoc struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
	Likes     int    `json:"likes"`
	Reposts   int    `json:"reposts"`
	Replies   int    `json:"replies"`
}

type searchDoc struct {
	Items []tweetDoc `json:"items"`
	// Older CLI builds emit "tweets" instead of "items".
	Tweets []tweetDoc `json:"tweets"`
}

// Search implements search.Searcher via the Bird CLI.
func (a *Adapter) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	out, err := a.run(ctx, "search", q.Topic,
		"--since", q.FromDate(),
		"--until", q.ToDate(),
		"--max-results", strconv.Itoa(q.Depth.MaxResults()),
		"--json")
	if err != nil {
		return nil, err
	}

	if err := validateSearchOutput(out); err != nil {
		return nil, err
	}

	var doc searchDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse bird search output: %w", err)
	}

	items := doc.Items
	if len(items) == 0 {
		items = doc.Tweets
	}

	res := &search.Result{
		Source:   search.SourceBird,
		Topic:    q.Topic,
		FromDate: q.FromDate(),
		ToDate:   q.ToDate(),
	}
	for _, tw := range items {
		post := search.Post{
			ID:      tw.ID,
			Author:  tw.Author,
			Text:    tw.Text,
			URL:     tw.URL,
			Likes:   tw.Likes,
			Reposts: tw.Reposts,
			Replies: tw.Replies,
		}
		if tw.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, tw.CreatedAt); err == nil {
				post.CreatedAt = ts
			}
		}
		res.Posts = append(res.Posts, post)
	}
	return res, nil
}
