// Package message defines the values passed between burrow's goroutines.
//
// The controller sends InputEvents to the presentation goroutine, which
// turns them into MutateCommands for the simulation. The simulation answers
// with DeltaNotifications describing what changed. Every loop iteration
// reports a Ticker telling its owner whether to keep going.
package message
