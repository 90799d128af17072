// Package ecs provides ECS adapters for canopy's pointer dispatch.
//
// The primary adapter is [NewDonburiStore], which bridges canopy interaction
// events into a [Donburi] world as typed events and keeps one entity per
// interacted token with running counters. Subscribe to
// [InteractionEventType] in your ECS systems to receive the events, or query
// [TokenComponent] for per-token state.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
