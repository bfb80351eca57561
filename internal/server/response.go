package server

import (
	"time"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/session"
)

type episodeResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	AudioURL    string     `json:"audio_url"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type podcastResponse struct {
	Address  string `json:"address"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type sessionResponse struct {
	Feed       string            `json:"feed,omitempty"`
	Podcast    *podcastResponse  `json:"podcast,omitempty"`
	Order      string            `json:"order"`
	Loading    bool              `json:"loading"`
	Episodes   []episodeResponse `json:"episodes"`
	SelectedID string            `json:"selected_id,omitempty"`
	Index      int               `json:"index"`
	Rate       float64           `json:"rate"`
	Location   string            `json:"location"`
	Moved      *bool             `json:"moved,omitempty"`
}

type knownResponse struct {
	Address string `json:"address"`
	Title   string `json:"title"`
}

type importResult struct {
	Address  string `json:"address"`
	Imported bool   `json:"imported"`
}

type importResponse struct {
	Results []importResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toEpisodeResponse(ep feed.Episode) episodeResponse {
	resp := episodeResponse{
		ID:       ep.ID,
		Title:    ep.Title,
		AudioURL: ep.AudioURL,
		ImageURL: ep.ImageURL,
	}
	if !ep.PublishedAt.IsZero() {
		published := ep.PublishedAt
		resp.PublishedAt = &published
	}
	return resp
}

func toSessionResponse(s session.Snapshot) sessionResponse {
	resp := sessionResponse{
		Feed:       s.Address,
		Order:      s.Order.String(),
		Loading:    s.Loading,
		Episodes:   make([]episodeResponse, 0, len(s.Episodes)),
		SelectedID: s.SelectedID,
		Index:      s.Index,
		Rate:       s.Rate,
		Location:   s.Location,
	}
	if s.Podcast != nil {
		resp.Podcast = &podcastResponse{
			Address:  s.Podcast.SelfURL,
			Title:    s.Podcast.Title,
			Author:   s.Podcast.Author,
			ImageURL: s.Podcast.ImageURL,
		}
	}
	for _, ep := range s.Episodes {
		resp.Episodes = append(resp.Episodes, toEpisodeResponse(ep))
	}
	return resp
}
