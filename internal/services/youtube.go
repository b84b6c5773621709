// YouTube Data API [PlaylistSource] implementation
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const defaultRequestsPerSecond = 5.0

var playlistItemParts = []string{"snippet", "contentDetails", "status"}

// YouTubeOpts configures a [YouTubeSource].
//
// HTTPClient, when set, is used as-is and must carry its own authentication.
type YouTubeOpts struct {
	APIKey            string
	TokenFile         string
	ClientID          string
	ClientSecret      string
	Endpoint          string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// YouTubeSource implements [PlaylistSource] on the YouTube Data API v3.
type YouTubeSource struct {
	service *youtube.Service
	limiter *rate.Limiter
}

// NewYouTubeSource creates a YouTube source from opts.
func NewYouTubeSource(ctx context.Context, opts YouTubeOpts) (*YouTubeSource, error) {
	clientOpts, err := opts.clientOptions(ctx)
	if err != nil {
		return nil, err
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &YouTubeSource{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// NewYouTubeSourceFromConfig builds a source from the credentials and archive sections of cfg.
func NewYouTubeSourceFromConfig(ctx context.Context, cfg *shared.Config) (*YouTubeSource, error) {
	yt := cfg.Credentials.YouTube
	return NewYouTubeSource(ctx, YouTubeOpts{
		APIKey:            yt.APIKey,
		TokenFile:         yt.TokenFile,
		ClientID:          yt.ClientID,
		ClientSecret:      yt.ClientSecret,
		Endpoint:          yt.Endpoint,
		RequestsPerSecond: cfg.Archive.RequestsPerSecond,
	})
}

func (o YouTubeOpts) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}

	switch {
	case o.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	case o.APIKey != "":
		opts = append(opts, option.WithAPIKey(o.APIKey))
	case o.TokenFile != "":
		ts, err := o.tokenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(ts))
	default:
		return nil, fmt.Errorf("%w: set credentials.youtube.api_key or token_file", shared.ErrMissingCredentials)
	}
	return opts, nil
}

// tokenSource loads a saved OAuth2 token. Refreshing it requires the client ID and secret it was issued to.
func (o YouTubeOpts) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(o.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token file: %v", shared.ErrMissingCredentials, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token file %s: %v", shared.ErrInvalidConfig, o.TokenFile, err)
	}

	config := &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
	}
	return config.TokenSource(ctx, &token), nil
}

// Name returns the service name.
func (y *YouTubeSource) Name() string {
	return "YouTube"
}

// ListPage calls playlistItems.list. The response ETag is returned as the freshness token.
func (y *YouTubeSource) ListPage(ctx context.Context, playlistID string, maxItems int, continuation string) (*Page, error) {
	if maxItems < 1 || maxItems > MaxPageSize {
		return nil, fmt.Errorf("%w: page size %d outside [1,%d]", shared.ErrInvalidArgument, maxItems, MaxPageSize)
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}

	call := y.service.PlaylistItems.List(playlistItemParts).
		PlaylistId(playlistID).
		MaxResults(int64(maxItems)).
		Context(ctx)
	if continuation != "" {
		call = call.PageToken(continuation)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError(playlistID, err)
	}

	page := &Page{
		Items:            make([]models.SourceItem, 0, len(resp.Items)),
		NextContinuation: resp.NextPageToken,
		FreshnessToken:   resp.Etag,
	}
	for _, item := range resp.Items {
		page.Items = append(page.Items, toSourceItem(item))
	}
	return page, nil
}

// GetMetadata calls playlists.list for the playlist title.
func (y *YouTubeSource) GetMetadata(ctx context.Context, playlistID string) (*Metadata, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}

	resp, err := y.service.Playlists.List([]string{"snippet"}).
		Id(playlistID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(playlistID, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	return &Metadata{Title: resp.Items[0].Snippet.Title}, nil
}

func toSourceItem(item *youtube.PlaylistItem) models.SourceItem {
	var si models.SourceItem
	if item.ContentDetails != nil {
		si.VideoID = item.ContentDetails.VideoId
	}
	if item.Snippet != nil {
		si.Title = item.Snippet.Title
		si.Position = int(item.Snippet.Position)
		if si.VideoID == "" && item.Snippet.ResourceId != nil {
			si.VideoID = item.Snippet.ResourceId.VideoId
		}
	}
	if item.Status != nil {
		si.PrivacyStatus = item.Status.PrivacyStatus
	}
	return si
}

func mapError(playlistID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
}
