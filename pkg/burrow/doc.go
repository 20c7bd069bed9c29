// Package burrow runs a terminal roguelike as three goroutines sharing one
// entity-component world.
//
// The controller reads user input and forwards it to the view. The view
// turns input into commands for the simulation and redraws when the
// simulation reports what changed. The simulation applies commands to the
// world. Both the view and the simulation touch the world only through
// guards handed out by an access.Registry, which admits many readers or one
// writer per key.
//
// Basic usage:
//
//	w, err := gameworld.NewWorld(gameworld.Empty10x10())
//	if err != nil {
//	    return err
//	}
//	reg := access.NewRegistry(w)
//	game, err := burrow.NewGame(reg, input, screen)
//	if err != nil {
//	    return err
//	}
//	return game.Run(ctx)
//
// # Shutdown
//
// An Exit event, or the end of input, is passed down the chain: the
// controller closes the input channel, the view sends Exit and closes the
// command channel, the simulation closes the delta channel. Run returns once
// all three have stopped.
//
// If a goroutine panics or fails, Run cancels the others and returns a
// *PanicError or *ThreadError naming it.
//
// # Saving
//
// WithSaveStore writes snapshots through a savegame.Store, periodically and
// at a clean exit. See package savegame for restoring them.
package burrow
