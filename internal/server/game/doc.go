// Package game holds the pure parts of game-state handling: the update
// engine that applies one UpdateEvent to a GameState, and the sync engine
// that turns a GameState into its wire/storage form and back.
//
// Nothing here touches storage; callers own the read-modify-write cycle.
package game
