// Package services defines the [PlaylistSource] interface for remote playlist providers and implements it for the YouTube Data API.
//
// # PlaylistSource
//
// The archive engine only needs two calls from a provider: a paginated item listing carrying an opaque
// freshness token, and a metadata lookup for the playlist title.
//
// # YouTube Implementation
//
// [YouTubeSource] wraps google.golang.org/api/youtube/v3. Credentials are either an API key (public playlists)
// or an OAuth2 token file produced by a previous authorization (private playlists). Requests are paced with a
// [rate.Limiter].
//
// The page ETag returned by playlistItems.list is used as the freshness token. Any change to the playlist
// contents changes the ETag of its first page.
//
// # Error Handling
//
// Remote failures are mapped onto shared sentinels:
//   - [shared.ErrPlaylistNotFound] : the API answered 404
//   - [shared.ErrSourceUnavailable] : any other transport or API failure
//   - [shared.ErrMissingCredentials] : neither an API key nor a token file was configured
package services
