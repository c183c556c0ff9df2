// Package spotify provides a small client for the Spotify Web API.
//
// It covers what a listener-facing app needs to read listening history:
// the authorization-code OAuth flow (authorize URL, code exchange, token
// refresh) and the personalized top-artists endpoint.
//
// Example usage:
//
//	client, err := spotify.NewClient(spotify.Config{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Authorize at:", client.AuthURL("http://127.0.0.1:3000/callback", ""))
//
//	token, err := client.ExchangeCode(ctx, code, "http://127.0.0.1:3000/callback")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	artists, err := client.TopArtists(ctx, token.AccessToken, spotify.ShortTerm, 50)
//
// # Error Handling
//
// API failures are returned as *Error. An expired or revoked access token
// matches ErrUnauthorized:
//
//	if errors.Is(err, spotify.ErrUnauthorized) {
//	    token, err = client.RefreshToken(ctx, token.RefreshToken)
//	}
//
// Network errors and 5xx responses are retried with exponential backoff
// (3 attempts). 4xx responses are returned immediately.
//
// # Spotify API Documentation
//
// https://developer.spotify.com/documentation/web-api
package spotify
