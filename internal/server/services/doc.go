// Package services contains server-side business logic: credentials,
// single-session management and the game-state store. Services reach
// storage only through a repomanager.RepositoryManager and report failures
// with the sentinels from internal/common.
package services
