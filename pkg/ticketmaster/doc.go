// Package ticketmaster provides a client for the Ticketmaster Discovery API v2.
//
// Only the read-only search endpoints needed to find concerts are covered:
// attraction search (performers) and event search. Every request is
// authenticated with a consumer API key passed as the apikey query parameter.
//
// Example usage:
//
//	import "github.com/olivia646/spotify-concerts/pkg/ticketmaster"
//
//	client, err := ticketmaster.NewClient(ticketmaster.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	attractions, err := client.SearchAttractions(ctx, ticketmaster.AttractionQuery{
//	    Keyword:        "Radiohead",
//	    Classification: ticketmaster.ClassificationMusic,
//	    Size:           5,
//	})
//
// # Error Handling
//
// Non-2xx responses are returned as *Error. A 429 response matches
// ErrRateLimited with errors.Is:
//
//	events, err := client.SearchEvents(ctx, query)
//	if errors.Is(err, ticketmaster.ErrRateLimited) {
//	    // back off
//	}
//
// The client never retries on its own; pacing and backoff are left to the
// caller.
//
// # Ticketmaster API Documentation
//
// https://developer.ticketmaster.com/products-and-docs/apis/discovery-api/v2/
package ticketmaster
