package notes

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// cursorKey is the keyset resume position behind an opaque cursor token:
// the (createdAt, noteId) pair of the last row on the previous page. It is
// encoded as base64(JSON) at the storage boundary; nothing outside this file
// and the repository inspects its contents.
type cursorKey struct {
	CreatedAt time.Time `json:"createdAt"`
	NoteID    string    `json:"noteId"`
}

func encodeCursor(k cursorKey) string {
	raw, _ := json.Marshal(k)
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (cursorKey, error) {
	var k cursorKey
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return k, err
	}
	if err := json.Unmarshal(raw, &k); err != nil {
		return k, err
	}
	return k, nil
}
