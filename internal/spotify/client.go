// Package spotify provides the source-metadata provider backed by the
// Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"grabbit/internal/core"
	"grabbit/pkg/linkref"
)

const (
	// albumPageLimit is the API maximum page size for album tracks.
	albumPageLimit = 50
	// playlistPageLimit is the API maximum page size for playlist items.
	playlistPageLimit = 100
)

// Client fetches track and collection metadata using the
// client-credentials grant. Without credentials the client stays
// unconnected and every lookup reports ErrUnauthorized instead of
// crashing.
type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Connect performs the client-credentials token exchange. Missing
// credentials are not an error: the client degrades to
// always-unavailable and the caller keeps running.
func (c *Client) Connect(ctx context.Context) error {
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		c.logger.Warn("Spotify credentials not configured, metadata lookups disabled")
		return nil
	}

	authConfig := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := authConfig.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get client-credentials token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	c.client = spotify.New(httpClient)

	c.logger.Info("Spotify client connected")
	return nil
}

// Connected reports whether metadata lookups are available.
func (c *Client) Connected() bool {
	return c.client != nil
}

// Track fetches canonical metadata for a single track id.
func (c *Client) Track(ctx context.Context, id string) (*core.TrackMetadata, error) {
	if c.client == nil {
		return nil, core.ErrUnauthorized
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, c.mapError("get track", err)
	}

	meta := convertTrack(&track.SimpleTrack, track.Album.Name)
	meta.Popularity = int(track.Popularity)

	c.logger.Debug("Resolved track metadata",
		zap.String("trackID", id),
		zap.String("title", meta.Title),
		zap.String("artist", strings.Join(meta.Contributors, ", ")))

	return meta, nil
}

// Collection fetches an album or playlist listing, following the API's
// paging until the platform reports no further page. Listings are never
// silently truncated.
func (c *Client) Collection(ctx context.Context, kind linkref.Kind, id string) (*core.Collection, error) {
	if c.client == nil {
		return nil, core.ErrUnauthorized
	}

	switch kind {
	case linkref.KindAlbum:
		return c.albumTracks(ctx, id)
	case linkref.KindPlaylist:
		return c.playlistTracks(ctx, id)
	default:
		return nil, fmt.Errorf("unsupported collection kind %s: %w", kind, core.ErrNotFound)
	}
}

func (c *Client) albumTracks(ctx context.Context, id string) (*core.Collection, error) {
	album, err := c.client.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, c.mapError("get album", err)
	}

	collection := &core.Collection{Name: album.Name}
	offset := 0
	for {
		page, err := c.client.GetAlbumTracks(ctx, spotify.ID(id),
			spotify.Limit(albumPageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, c.mapError("get album tracks", err)
		}

		for i := range page.Tracks {
			collection.Tracks = append(collection.Tracks, *convertTrack(&page.Tracks[i], album.Name))
		}

		if len(page.Tracks) < albumPageLimit {
			break
		}
		offset += albumPageLimit
	}

	c.logger.Info("Resolved album",
		zap.String("albumID", id),
		zap.Int("trackCount", len(collection.Tracks)))

	return collection, nil
}

func (c *Client) playlistTracks(ctx context.Context, id string) (*core.Collection, error) {
	playlist, err := c.client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return nil, c.mapError("get playlist", err)
	}

	collection := &core.Collection{Name: playlist.Name}
	offset := 0
	for {
		items, err := c.client.GetPlaylistItems(ctx, spotify.ID(id),
			spotify.Limit(playlistPageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, c.mapError("get playlist items", err)
		}

		for i := range items.Items {
			// Only process tracks (not episodes or null items)
			track := items.Items[i].Track.Track
			if track == nil {
				continue
			}
			collection.Tracks = append(collection.Tracks, *convertTrack(&track.SimpleTrack, track.Album.Name))
		}

		if len(items.Items) < playlistPageLimit {
			break
		}
		offset += playlistPageLimit
	}

	c.logger.Info("Resolved playlist",
		zap.String("playlistID", id),
		zap.Int("trackCount", len(collection.Tracks)))

	return collection, nil
}

// mapError translates API failures into the pipeline's taxonomy so the
// user can distinguish absent content from missing credentials.
func (c *Client) mapError(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, core.ErrNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
		}
	}
	c.logger.Warn("Spotify request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, core.ErrUnavailable)
}

func convertTrack(track *spotify.SimpleTrack, albumName string) *core.TrackMetadata {
	contributors := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		contributors = append(contributors, artist.Name)
	}

	return &core.TrackMetadata{
		Title:          track.Name,
		Contributors:   contributors,
		CollectionName: albumName,
		Duration:       time.Duration(track.Duration) * time.Millisecond,
	}
}
