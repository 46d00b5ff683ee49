package service

import (
	"fmt"

	"share-ingest-service/internal/entity"
)

// ModeSelector resolves the user's choice against the closed mode set.
// Exactly one mode comes out of a dispatch, or the pipeline is cancelled.
type ModeSelector struct{}

// Choices returns the candidate modes in presentation order.
func (ModeSelector) Choices() []entity.ModeChoice {
	return entity.ModeChoices()
}

// Select resolves a mode key. An empty key models a dismissed prompt and
// cancels the pipeline before anything is uploaded.
func (ModeSelector) Select(key string) (entity.Mode, error) {
	if key == "" {
		return "", ErrSelectionCancelled
	}
	for _, c := range entity.ModeChoices() {
		if string(c.Key) == key {
			return c.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, key)
}
