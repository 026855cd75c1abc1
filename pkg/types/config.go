package types

import (
	"errors"
	"time"
)

// Defaults applied when a config value is absent.
const (
	DefaultIndexURL   = "https://pypi.org/pypi"
	DefaultAPIURL     = "https://api.github.com/graphql"
	DefaultDocsFolder = "docs"
	DefaultCacheTTL   = 24 * time.Hour
)

// Config validation errors.
var (
	ErrIndexURLEmpty   = errors.New("index_url must not be empty")
	ErrAPIURLEmpty     = errors.New("api_url must not be empty")
	ErrCacheTTLInvalid = errors.New("cache_ttl must not be negative")
)

// Config holds tool-wide settings loaded from config.yaml and flags.
type Config struct {
	RootRepoPath string        `json:"root_repo_path" yaml:"root_repo_path"`
	DocsFolder   string        `json:"docs_folder" yaml:"docs_folder"`
	StoreDir     string        `json:"store_dir" yaml:"store_dir"`
	IndexURL     string        `json:"index_url" yaml:"index_url"`
	APIURL       string        `json:"api_url" yaml:"api_url"`
	CacheTTL     time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	AutoMerge    AutoMerge     `json:"automerge" yaml:"automerge"`
}

// AutoMerge gates the activate-auto-merge command. An empty AllowedActors
// list admits any actor; an empty BranchPrefix admits any head branch.
type AutoMerge struct {
	AllowedActors []string `json:"allowed_actors" yaml:"allowed_actors"`
	BranchPrefix  string   `json:"branch_prefix" yaml:"branch_prefix"`
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.IndexURL == "" {
		return ErrIndexURLEmpty
	}
	if c.APIURL == "" {
		return ErrAPIURLEmpty
	}
	if c.CacheTTL < 0 {
		return ErrCacheTTLInvalid
	}
	return nil
}

// ActorAllowed reports whether the given login passes the allowed-actors
// gate.
func (a AutoMerge) ActorAllowed(login string) bool {
	if len(a.AllowedActors) == 0 {
		return true
	}
	for _, actor := range a.AllowedActors {
		if actor == login {
			return true
		}
	}
	return false
}
