package showdown

import "encoding/json"

// BattleSummary is one record of the search listing. Only the id is read;
// every other field the server sends is ignored.
type BattleSummary struct {
	ID string
}

// decodeSummary reads the id of one listing record. A record that is not an
// object, or whose id is absent, null or not a string, yields an empty ID.
func decodeSummary(raw json.RawMessage) BattleSummary {
	var record struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return BattleSummary{}
	}

	var id string
	if err := json.Unmarshal(record.ID, &id); err != nil {
		return BattleSummary{}
	}
	return BattleSummary{ID: id}
}
