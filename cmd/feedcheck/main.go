// Command feedcheck fetches a feed the way the player does and prints its
// episodes in session order, with the shareable link of each.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/playlist"
)

func main() {
	orderFlag := flag.String("order", "listed", "episode order: listed, date_asc or date_desc")
	base := flag.String("base", "/", "base of the printed links")
	private := flag.Bool("private", false, "allow loopback and LAN feeds")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	verbose := flag.Bool("v", false, "log fetch details to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: feedcheck [flags] <feed address>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	order, err := playlist.ParseOrder(*orderFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	store := feed.NewStore(feed.StoreOptions{
		Fetcher: feed.NewHTTPFetcher(feed.FetcherOptions{AllowPrivateNetworks: *private}),
		Parser:  feed.NewParser(),
		Logger:  log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	address, err := feed.NormalizeAddress(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	entry := store.Fetch(ctx, address)
	if entry == nil {
		fmt.Fprintf(os.Stderr, "could not load %s (run with -v for details)\n", address)
		os.Exit(1)
	}

	p := entry.Podcast
	fmt.Printf("%s\n", p.Title)
	if p.Author != "" {
		fmt.Printf("  by %s\n", p.Author)
	}
	fmt.Printf("  feed: %s\n", p.SelfURL)
	fmt.Printf("  %d episodes, %s, fetched %s\n\n", len(entry.Episodes), order.Label(), humanize.Time(entry.FetchedAt))

	for i, ep := range playlist.Apply(entry.Episodes, order) {
		published := "undated"
		if !ep.PublishedAt.IsZero() {
			published = ep.PublishedAt.Format(time.DateOnly)
		}
		fmt.Printf("%3d. %s  %s\n", i+1, published, ep.Title)
		fmt.Printf("     %s\n", location.Encode(*base, location.Session{
			Feed:       address,
			EpisodeID:  ep.ID,
			HasEpisode: true,
		}))
	}
}
