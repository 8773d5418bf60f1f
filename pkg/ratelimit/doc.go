// Package ratelimit paces requests to the replay server.
//
// The server publishes no rate limit, so the fetcher sleeps a random duration
// after every attempted download. Pacer draws that duration uniformly from a
// configured [min, max] range (0s to 3s by default). Skipped records (already
// on disk or without an id) are never paced.
//
// Usage:
//
//	pacer := ratelimit.NewPacer(0, 3*time.Second)
//
//	// after each download attempt
//	if err := pacer.Wait(ctx); err != nil {
//	    return err // context canceled
//	}
//
// Tests swap the sleep function with a Recorder so nothing actually sleeps.
package ratelimit
