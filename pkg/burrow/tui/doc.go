// Package tui is burrow's terminal front end.
//
// View is the presentation goroutine: it receives input events from the
// controller, sends commands to the simulation and redraws the map, read
// under access guards, whenever a delta arrives. App is the bubbletea model
// that owns the terminal, translating key presses with KeyMap and displaying
// frames the View hands to a ProgramScreen.
package tui
