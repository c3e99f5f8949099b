// ABOUTME: One headline fetch issued by the listing controller
// ABOUTME: Runs off the update loop and reports an Outcome tagged with its epoch

package listing

import (
	"context"
	"time"

	"github.com/sawant8123/news-api-portal/internal/client"
)

// DefaultFetchTimeout aborts a headline fetch on the client side
const DefaultFetchTimeout = 10 * time.Second

// Fetcher loads headlines from the backend
type Fetcher interface {
	Headlines(ctx context.Context, p client.HeadlinesParams) ([]client.Article, error)
}

// Fetch is an issued request; its Epoch identifies it when it completes
type Fetch struct {
	Epoch  uint64
	Params client.HeadlinesParams

	fetcher Fetcher
	timeout time.Duration
}

// Outcome is the result of running a Fetch
type Outcome struct {
	Epoch    uint64
	Params   client.HeadlinesParams
	Articles []client.Article
	Err      error
}

// Run performs the fetch. It does not touch controller state, so it may run
// on any goroutine.
func (f *Fetch) Run(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	articles, err := f.fetcher.Headlines(ctx, f.Params)
	return Outcome{Epoch: f.Epoch, Params: f.Params, Articles: articles, Err: err}
}
