package http

import (
	"github.com/aretw0/vigil/pkg/diff"
	"github.com/aretw0/vigil/pkg/domain"
)

type changePayload struct {
	Field    string             `json:"field,omitempty"`
	Kind     string             `json:"kind"`
	Current  any                `json:"current,omitempty"`
	Previous any                `json:"previous,omitempty"`
	Items    *collectionPayload `json:"items,omitempty"`
	Entries  *mapPayload        `json:"entries,omitempty"`
}

type collectionPayload struct {
	Additions []itemPayload `json:"additions,omitempty"`
	Moves     []itemPayload `json:"moves,omitempty"`
	Removals  []itemPayload `json:"removals,omitempty"`
}

type itemPayload struct {
	Item any `json:"item"`
	From int `json:"from"`
	To   int `json:"to"`
}

type mapPayload struct {
	Additions []entryPayload `json:"additions,omitempty"`
	Changes   []entryPayload `json:"changes,omitempty"`
	Removals  []entryPayload `json:"removals,omitempty"`
}

type entryPayload struct {
	Key      any `json:"key"`
	Previous any `json:"previous,omitempty"`
	Current  any `json:"current,omitempty"`
}

func changesToJSON(head *domain.ChangeRecord) []changePayload {
	out := make([]changePayload, 0)
	for c := head; c != nil; c = c.Next {
		p := changePayload{Kind: c.Selector.Kind.String()}
		if field, ok := c.Handler.(string); ok {
			p.Field = field
		}
		switch v := c.CurrentValue.(type) {
		case *diff.CollectionChange:
			p.Items = collectionToJSON(v)
		case *diff.MapChange:
			p.Entries = mapToJSON(v)
		default:
			p.Current = c.CurrentValue
			p.Previous = c.PreviousValue
		}
		out = append(out, p)
	}
	return out
}

func collectionToJSON(c *diff.CollectionChange) *collectionPayload {
	p := &collectionPayload{}
	for _, it := range c.Additions() {
		p.Additions = append(p.Additions, itemPayload{Item: it.Item, From: it.PreviousIndex, To: it.CurrentIndex})
	}
	for _, it := range c.Moves() {
		p.Moves = append(p.Moves, itemPayload{Item: it.Item, From: it.PreviousIndex, To: it.CurrentIndex})
	}
	for _, it := range c.Removals() {
		p.Removals = append(p.Removals, itemPayload{Item: it.Item, From: it.PreviousIndex, To: it.CurrentIndex})
	}
	return p
}

func mapToJSON(c *diff.MapChange) *mapPayload {
	p := &mapPayload{}
	for _, e := range c.Additions() {
		p.Additions = append(p.Additions, entryPayload{Key: e.Key, Current: e.CurrentValue})
	}
	for _, e := range c.Changes() {
		p.Changes = append(p.Changes, entryPayload{Key: e.Key, Previous: e.PreviousValue, Current: e.CurrentValue})
	}
	for _, e := range c.Removals() {
		p.Removals = append(p.Removals, entryPayload{Key: e.Key, Previous: e.PreviousValue})
	}
	return p
}
