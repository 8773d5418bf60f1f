// Package showdown is a small client for the public Pokémon Showdown replay
// server.
//
// Two endpoints are used:
//   - {base}search.json?format=F[&page=N] returns a JSON array of BattleSummary
//   - {base}{id}.json returns the full replay document
//
// Every request is a single attempt bounded by the client timeout. Failures
// are returned as *errors.Error values from replayfetch/pkg/errors.
//
// Example usage:
//
//	client := showdown.NewClient(showdown.DefaultBaseURL, 10*time.Second, log)
//
//	battles, err := client.SearchPage(ctx, "gen9vgc2025regibo3", 1)
//	if err != nil {
//	    // treat as end of listing
//	}
//	for _, b := range battles {
//	    doc, err := client.Replay(ctx, b.ID)
//	    // doc is compact JSON ready to be written to disk
//	}
package showdown
