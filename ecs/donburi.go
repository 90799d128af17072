package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for canopy interaction
// events. Every dispatched mouse event is published, claimed or not.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

// TokenState is the per-token component maintained by DonburiStore.
type TokenState struct {
	TokenID uint32
	Name    string
	Downs   int
	Moves   int
	Ups     int
	Last    canopy.InteractionEvent
}

// TokenComponent holds the TokenState of every token that claimed an event.
var TokenComponent = donburi.NewComponentType[TokenState]()

// DonburiStore is a canopy.EntityStore backed by a Donburi world.
type DonburiStore struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, entities: make(map[uint32]donburi.Entity)}
}

// EmitEvent publishes event and updates the target token's entity.
func (s *DonburiStore) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
	if event.TokenID == 0 {
		return
	}

	ent, ok := s.entities[event.TokenID]
	if !ok || !s.world.Valid(ent) {
		ent = s.world.Create(TokenComponent)
		s.entities[event.TokenID] = ent
	}
	st := TokenComponent.Get(s.world.Entry(ent))
	st.TokenID = event.TokenID
	st.Name = event.Name
	st.Last = event
	switch event.Type {
	case canopy.EventMouseDown:
		st.Downs++
	case canopy.EventMouseMove:
		st.Moves++
	case canopy.EventMouseUp:
		st.Ups++
	}
}

// Entity returns the entity tracking tokenID, if that token ever claimed an
// event.
func (s *DonburiStore) Entity(tokenID uint32) (donburi.Entity, bool) {
	ent, ok := s.entities[tokenID]
	if !ok || !s.world.Valid(ent) {
		return 0, false
	}
	return ent, true
}

// Forget removes the entity tracking tokenID. Call it when a token is
// dropped from the scene.
func (s *DonburiStore) Forget(tokenID uint32) {
	ent, ok := s.entities[tokenID]
	if !ok {
		return
	}
	delete(s.entities, tokenID)
	if s.world.Valid(ent) {
		s.world.Remove(ent)
	}
}
