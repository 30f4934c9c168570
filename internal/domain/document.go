package domain

import (
	"encoding/json"
	"time"
)

// Document is one record in a backend collection.
type Document struct {
	ID           string
	DatabaseID   string
	CollectionID string
	Data         map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocumentList is a page of documents plus the unpaged total.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Document attributes live next to the $-prefixed system fields on the wire.
var documentSystemFields = map[string]bool{
	"$id": true, "$databaseId": true, "$collectionId": true,
	"$createdAt": true, "$updatedAt": true, "$permissions": true,
}

// MarshalJSON flattens Data into the object, backend style.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Data)+5)
	for k, v := range d.Data {
		out[k] = v
	}
	out["$id"] = d.ID
	out["$databaseId"] = d.DatabaseID
	out["$collectionId"] = d.CollectionID
	out["$createdAt"] = d.CreatedAt
	out["$updatedAt"] = d.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON splits system fields from attributes.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var sys struct {
		ID           string    `json:"$id"`
		DatabaseID   string    `json:"$databaseId"`
		CollectionID string    `json:"$collectionId"`
		CreatedAt    time.Time `json:"$createdAt"`
		UpdatedAt    time.Time `json:"$updatedAt"`
	}
	if err := json.Unmarshal(b, &sys); err != nil {
		return err
	}
	d.ID, d.DatabaseID, d.CollectionID = sys.ID, sys.DatabaseID, sys.CollectionID
	d.CreatedAt, d.UpdatedAt = sys.CreatedAt, sys.UpdatedAt
	d.Data = make(map[string]any, len(raw))
	for k, v := range raw {
		if documentSystemFields[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		d.Data[k] = val
	}
	return nil
}

// String returns a string attribute or "".
func (d Document) String(key string) string {
	s, _ := d.Data[key].(string)
	return s
}
