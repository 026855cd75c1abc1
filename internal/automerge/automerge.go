// Package automerge flips the auto-merge switch on a pull request through
// the hosting GraphQL API. The gate in front of it makes the command safe to
// run on every pull request event: anything that does not match the allowed
// actors or the branch prefix is a quiet no-op.
package automerge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dukaforge/cicd/internal/console"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/pkg/types"
)

// EnvEventPath is where the workflow runtime puts the event payload.
const EnvEventPath = "GITHUB_EVENT_PATH"

// EnvToken and EnvDefaultToken supply the API token, in that order.
const (
	EnvToken        = "PAT"
	EnvDefaultToken = "GITHUB_TOKEN"
)

const requestTimeout = 30 * time.Second

// enableMutation asks for squash merging once all requirements are met.
const enableMutation = `mutation($pullRequestId: ID!) {
  enablePullRequestAutoMerge(input: {pullRequestId: $pullRequestId, mergeMethod: SQUASH}) {
    pullRequest { number }
  }
}`

// Event is the subset of a pull request event payload the activator reads.
type Event struct {
	PullRequest struct {
		NodeID string `json:"node_id"`
		Number int    `json:"number"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// LoadEvent reads the event payload at path, falling back to the
// environment-provided location when path is empty.
func LoadEvent(path string) (Event, error) {
	if path == "" {
		path = os.Getenv(EnvEventPath)
	}
	if path == "" {
		return Event{}, fmt.Errorf("no event payload: give --event-path or set %s: %w",
			EnvEventPath, types.ErrInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("reading event payload: %w", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding event payload %s: %v: %w",
			path, err, types.ErrInputParse)
	}
	if ev.PullRequest.NodeID == "" {
		return Event{}, fmt.Errorf("event payload carries no pull request: %w", types.ErrInput)
	}
	return ev, nil
}

// TokenFromEnv returns the API token, preferring the personal token over the
// workflow default.
func TokenFromEnv() (string, error) {
	token := os.Getenv(EnvToken)
	if token == "" {
		token = os.Getenv(EnvDefaultToken)
	}
	if token == "" {
		return "", fmt.Errorf("no API token: set %s or %s: %w",
			EnvToken, EnvDefaultToken, types.ErrInput)
	}
	return token, nil
}

// Activator enables auto-merge on gated pull requests.
type Activator struct {
	apiURL string
	token  string
	gate   types.AutoMerge
	httpc  *http.Client
}

// New returns an Activator against the given GraphQL endpoint.
func New(apiURL, token string, gate types.AutoMerge) *Activator {
	return &Activator{
		apiURL: apiURL,
		token:  token,
		gate:   gate,
		httpc:  &http.Client{Timeout: requestTimeout},
	}
}

// Activate enables auto-merge for the event's pull request. It reports
// whether auto-merge was enabled; a gated event returns false with no error.
func (a *Activator) Activate(ctx context.Context, ev Event) (bool, error) {
	actor := ev.Sender.Login
	if actor == "" {
		actor = ev.PullRequest.User.Login
	}
	if !a.gate.ActorAllowed(actor) {
		console.Info("Actor %s is not in the allowed list, leaving the pull request alone", actor)
		return false, nil
	}
	if prefix := a.gate.BranchPrefix; prefix != "" &&
		!strings.HasPrefix(ev.PullRequest.Head.Ref, prefix) {
		console.Info("Branch %s does not match prefix %q, leaving the pull request alone",
			ev.PullRequest.Head.Ref, prefix)
		return false, nil
	}

	if err := a.enable(ctx, ev.PullRequest.NodeID); err != nil {
		return false, err
	}
	console.Success("Auto-merge enabled for pull request #%d", ev.PullRequest.Number)
	return true, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *Activator) enable(ctx context.Context, nodeID string) error {
	payload, err := json.Marshal(graphQLRequest{
		Query:     enableMutation,
		Variables: map[string]any{"pullRequestId": nodeID},
	})
	if err != nil {
		return fmt.Errorf("encoding API request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling the API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned %s: %s", resp.Status, body)
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decoding API response: %w", err)
	}
	for _, apiErr := range decoded.Errors {
		if strings.Contains(strings.ToLower(apiErr.Message), "already") {
			logging.Debug("auto-merge already enabled: %s", apiErr.Message)
			continue
		}
		return fmt.Errorf("enabling auto-merge: %s", apiErr.Message)
	}
	return nil
}
