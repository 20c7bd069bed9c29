// Package gameworld holds burrow's component types, the Map resource and the
// code that builds a world from a hand-made layout.
//
// Everything here operates on an *ecs.World directly and is meant for world
// construction. Once the world is shared, go through package access.
package gameworld
