package feed

import (
	"fmt"

	"github.com/bytedance/sonic"
)

const createdAtKey = "created_at"

// Item is one record returned by the remote API: a tweet, a user or a direct
// message. CreatedAt is lifted out of the payload so it can be rewritten for
// display; every other field is kept verbatim in Fields and must be treated as
// read-only once decoded.
type Item struct {
	CreatedAt string
	Fields    map[string]any
}

// NewItem builds an Item from a timestamp and payload fields.
func NewItem(createdAt string, fields map[string]any) Item {
	return Item{CreatedAt: createdAt, Fields: fields}
}

// WithCreatedAt returns a copy of the item carrying a new CreatedAt value.
func (i Item) WithCreatedAt(createdAt string) Item {
	i.CreatedAt = createdAt
	return i
}

// Str walks nested objects along path and renders the leaf as text.
// Missing keys and null leaves render as the empty string.
func (i Item) Str(path ...string) string {
	value, ok := i.lookup(path)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports the boolean leaf at path, false when absent.
func (i Item) Bool(path ...string) bool {
	value, ok := i.lookup(path)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

func (i Item) lookup(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	if len(path) == 1 && path[0] == createdAtKey {
		return i.CreatedAt, true
	}

	var current any = i.Fields
	for _, key := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// UnmarshalJSON decodes an arbitrary JSON object, extracting created_at.
func (i *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return err
	}

	i.CreatedAt = ""
	if raw, ok := fields[createdAtKey].(string); ok {
		i.CreatedAt = raw
	}
	delete(fields, createdAtKey)
	i.Fields = fields
	return nil
}

// MarshalJSON re-assembles the payload with the current CreatedAt value.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Fields)+1)
	for key, value := range i.Fields {
		out[key] = value
	}
	if i.CreatedAt != "" {
		out[createdAtKey] = i.CreatedAt
	}
	return sonic.Marshal(out)
}

// FriendsPage is the cursor-wrapped response of the friends list endpoint.
type FriendsPage struct {
	Users      []Item `json:"users"`
	NextCursor int64  `json:"next_cursor"`
}
