// Package canopy is a reactive, retained-mode 2D scene graph for
// [Ebitengine].
//
// A scene is declared once as a tree of children (shapes, images and
// groups, with conditional slots and keyed lists) whose properties are
// functions reading reactive [Signal] values. The tree resolves into an
// ordered sequence of live tokens. Changing a signal re-resolves or repaints
// exactly what read it.
//
// # Quick start
//
//	scene := canopy.NewScene(canopy.SceneConfig{Draggable: true})
//	fill := canopy.NewSignal(scene.Runtime(), canopy.MustColor("tomato"))
//	scene.Mount(
//		canopy.Rectangle(func() canopy.RectangleProps {
//			return canopy.RectangleProps{
//				ShapeProps: canopy.ShapeProps{
//					Style:     canopy.Style{Position: canopy.Of(canopy.Vec2{X: 40, Y: 40}), Fill: canopy.Of(fill.Get())},
//					Draggable: true,
//				},
//				Dimensions: canopy.Dimensions{Width: 120, Height: 80},
//			}
//		}),
//	)
//	canopy.Run(scene, canopy.RunConfig{Title: "canopy", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself, feed pointer input to
// [Scene.Dispatch], and paint with [Scene.Draw] onto an [EbitenSurface].
// [RasterSurface] paints onto an [image.RGBA] without a GPU.
//
// # Paint and hit-test order
//
// Tokens paint in declaration order and are hit-tested in reverse, so the
// visually topmost token claims the pointer first. A claim clears
// [MouseEvent.Propagation], which stops the walk and suppresses the scene
// fallback (panning and the scene-level handlers). Groups offset, clip and
// composite their children and may be dragged as a unit.
//
// # Tweens and ECS
//
// Signals can be animated with tweens (via [gween]) registered through
// [Context.Animate]. Interaction events can be forwarded to a [Donburi]
// world with the adapter in canopy/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package canopy
