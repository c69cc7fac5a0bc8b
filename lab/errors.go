/*
errors.go - Centralized error types for the lab engine

PURPOSE:
  All error types in one place. Reconciliation itself raises no errors:
  missing catalog references are skipped or reset, and input shortages are a
  normal termination condition of the catch-up loop. Errors exist for the
  command surface (purchases, recipe selection, hatching) and for storage
  failures.

USAGE:
  if errors.Is(err, lab.ErrInsufficientGold) { ... }

SEE ALSO:
  - upgrade.go: Purchase validation
  - store.go: Store interfaces returning not-found errors
*/
package lab

import (
	"errors"
	"fmt"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPlayerNotFound is returned when a referenced player doesn't exist.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrLabNotFound is returned when a player has no lab yet.
	ErrLabNotFound = errors.New("lab not found")

	// ErrUnknownUpgrade is returned when purchasing an upgrade the catalog
	// doesn't define.
	ErrUnknownUpgrade = errors.New("unknown upgrade")

	// ErrUnknownRecipe is returned when selecting a recipe the catalog
	// doesn't define.
	ErrUnknownRecipe = errors.New("unknown recipe")

	// ErrInsufficientGold is returned when a purchase costs more than the
	// player has.
	ErrInsufficientGold = errors.New("insufficient gold")

	// ErrMaxLevelReached is returned when an upgrade is already at its
	// maximum level.
	ErrMaxLevelReached = errors.New("upgrade at max level")

	// ErrMissingItem is returned when a command needs an item the player
	// doesn't own (e.g. hatching without an egg).
	ErrMissingItem = errors.New("missing required item")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientGoldError reports a purchase shortfall.
type InsufficientGoldError struct {
	UpgradeID content.UpgradeID
	Level     int
	Cost      int
	Gold      int
}

func (e *InsufficientGoldError) Error() string {
	return fmt.Sprintf("insufficient gold for %s level %d: cost %d, have %d",
		e.UpgradeID, e.Level, e.Cost, e.Gold)
}

func (e *InsufficientGoldError) Unwrap() error { return ErrInsufficientGold }

// MaxLevelError reports an attempt to level past an upgrade's cap.
type MaxLevelError struct {
	UpgradeID content.UpgradeID
	MaxLevel  int
}

func (e *MaxLevelError) Error() string {
	return fmt.Sprintf("%s is already at max level %d", e.UpgradeID, e.MaxLevel)
}

func (e *MaxLevelError) Unwrap() error { return ErrMaxLevelReached }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientGold) ||
		errors.Is(err, ErrMaxLevelReached) ||
		errors.Is(err, ErrUnknownUpgrade) ||
		errors.Is(err, ErrUnknownRecipe) ||
		errors.Is(err, ErrMissingItem)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) || errors.Is(err, ErrLabNotFound)
}
