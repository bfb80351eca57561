package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ImportResult is the outcome of importing one address. Entry is nil when the
// feed could not be fetched.
type ImportResult struct {
	Address string
	Entry   *Entry
}

// Importer adds several feeds at once through a Store, pacing the fetches.
type Importer struct {
	store   *Store
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewImporter creates an Importer allowing perSecond fetches with the given
// burst. A non-positive rate disables pacing.
func NewImporter(store *Store, perSecond float64, burst int, logger zerolog.Logger) *Importer {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Importer{
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.With().Str("component", "feed.importer").Logger(),
	}
}

// Import fetches every address and returns one result per address in input
// order. Successful fetches are added to the known feeds by the Store.
func (im *Importer) Import(ctx context.Context, addresses []string) []ImportResult {
	results := make([]ImportResult, len(addresses))
	for i, address := range addresses {
		results[i].Address = address
	}

	var wg sync.WaitGroup
	for i, address := range addresses {
		if err := im.limiter.Wait(ctx); err != nil {
			im.log.Warn().Err(err).Str("address", address).Msg("import cancelled")
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i].Entry = im.store.Fetch(ctx, address)
		}()
	}
	wg.Wait()

	imported := 0
	for _, r := range results {
		if r.Entry != nil {
			imported++
		}
	}
	im.log.Info().Int("requested", len(addresses)).Int("imported", imported).Msg("import finished")
	return results
}
