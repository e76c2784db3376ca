package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starstrip/starstrip-planner/internal/model"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(Event) { got = append(got, "first") })
	b.Subscribe(func(Event) { got = append(got, "second") })

	b.Publish(Event{Kind: IdentityChanged})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(func(Event) { calls++ })
	b.Publish(Event{Kind: IdentityChanged})
	unsub()
	unsub()
	b.Publish(Event{Kind: IdentityChanged})
	assert.Equal(t, 1, calls)
}

func TestHandlerMayPublish(t *testing.T) {
	b := NewBus()
	var seen []model.Identity
	b.Subscribe(func(e Event) {
		seen = append(seen, e.Current)
		if e.Current.GuestID != "" {
			b.Publish(Event{Kind: IdentityChanged, Previous: e.Current, Current: model.Identity{UserID: e.Current.UserID}})
		}
	})

	b.Publish(Event{Kind: IdentityChanged, Current: model.Identity{UserID: "u", GuestID: "g"}})
	assert.Equal(t, []model.Identity{{UserID: "u", GuestID: "g"}, {UserID: "u"}}, seen)
}
