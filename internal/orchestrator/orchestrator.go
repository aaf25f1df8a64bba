package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/w920801-a11y/climate-try/internal/oracle"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

// ErrCredentialMissing is returned before any network call when no oracle
// credential is configured. Never retried.
var ErrCredentialMissing = errors.New("oracle credential is not configured")

const sourceTitleFallback = "Unknown source"

// Orchestrator converts a location into a weather snapshot via the AI oracle,
// applying the search-downgrade and retry policy.
type Orchestrator interface {
	// FetchWeather runs the full fetch policy. searchEnabled selects whether
	// the first attempt requests live search grounding.
	FetchWeather(ctx context.Context, loc weather.Location, searchEnabled bool) (*weather.Snapshot, error)
	// TestOracleConnection is a lightweight health probe. It never returns an
	// error; every failure mode collapses to false.
	TestOracleConnection(ctx context.Context) bool
}

type orchestrator struct {
	client       oracle.Client
	maxRetries   int
	retryBackoff time.Duration
}

func NewOrchestrator(client oracle.Client, maxRetries int, retryBackoff time.Duration) Orchestrator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &orchestrator{
		client:       client,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// FetchWeather is an iterative state machine over {search attempt,
// non-search attempt(remaining)}:
//
//   - a failed search attempt downgrades to non-search exactly once,
//     unconditionally, without touching the retry budget and without backoff;
//   - failed non-search attempts retry after a fixed backoff until the budget
//     runs out, then the last error propagates verbatim.
//
// Errors are not classified here; the presentation boundary does that.
func (o *orchestrator) FetchWeather(ctx context.Context, loc weather.Location, searchEnabled bool) (*weather.Snapshot, error) {
	if !o.client.Configured() {
		return nil, ErrCredentialMissing
	}

	remaining := o.maxRetries

	for {
		snapshot, err := o.attempt(ctx, loc, searchEnabled)
		if err == nil {
			return snapshot, nil
		}

		if searchEnabled {
			log.Warn().Err(err).Str("location", loc.Describe()).
				Msg("search-grounded attempt failed, downgrading to non-search mode")
			searchEnabled = false
			continue
		}

		if remaining > 0 {
			remaining--
			log.Warn().Err(err).Str("location", loc.Describe()).Int("remaining_retries", remaining).
				Msg("oracle attempt failed, retrying after backoff")
			time.Sleep(o.retryBackoff)
			continue
		}

		return nil, err
	}
}

func (o *orchestrator) attempt(ctx context.Context, loc weather.Location, searchEnabled bool) (*weather.Snapshot, error) {
	req := oracle.GenerateRequest{
		Prompt:       buildPrompt(loc, searchEnabled),
		EnableSearch: searchEnabled,
	}
	if !searchEnabled {
		req.JSONOutput = true
		req.Schema = snapshotSchema
	}

	result, err := o.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}

	payload := stripCodeFences(result.Text)
	if payload == "" {
		return nil, errors.New("oracle reply is empty")
	}

	var snapshot weather.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("oracle reply is not valid JSON: %w", err)
	}

	snapshot.Sources = extractSources(result.Grounding)
	snapshot.LastUpdated = time.Now().Format("Jan 2, 2006 3:04 PM")
	snapshot.IsRealtime = searchEnabled && len(snapshot.Sources) > 0

	return &snapshot, nil
}

// extractSources maps grounding chunks to provenance entries. Every chunk
// yields an entry; missing title or URI fall back to placeholders.
func extractSources(chunks []oracle.GroundingChunk) []weather.Source {
	if len(chunks) == 0 {
		return nil
	}
	sources := make([]weather.Source, 0, len(chunks))
	for _, chunk := range chunks {
		src := weather.Source{Title: sourceTitleFallback, URI: "#"}
		if chunk.Web != nil {
			if chunk.Web.Title != "" {
				src.Title = chunk.Web.Title
			}
			if chunk.Web.URI != "" {
				src.URI = chunk.Web.URI
			}
		}
		sources = append(sources, src)
	}
	return sources
}

func (o *orchestrator) TestOracleConnection(ctx context.Context) bool {
	if !o.client.Configured() {
		return false
	}

	result, err := o.client.GenerateContent(ctx, oracle.GenerateRequest{Prompt: "respond with OK"})
	if err != nil {
		log.Debug().Err(err).Msg("oracle connection probe failed")
		return false
	}

	return strings.Contains(result.Text, "OK")
}
