package eventtypes

import (
	"fmt"
	"regexp"
)

// namePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Reserved is sent only by the operator test path and cannot be subscribed to
const Reserved = "test.webhook"

/* EventType is one entry of the event vocabulary
 * Subscriptions may only reference names present in the catalog
 */
type EventType struct {
	Name        string
	Description string
}

// Validate checks if the event type definition is valid
func (e EventType) Validate() error {
	return ValidateName(e.Name)
}

// ValidateName validates an event type name format
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", name)
	}
	return nil
}

// defaults is the vocabulary used when no catalog file is configured
var defaults = []EventType{
	{Name: "schedule.created", Description: "A new schedule was generated"},
	{Name: "schedule.updated", Description: "Games, slots or venues of a schedule changed"},
	{Name: "schedule.deleted", Description: "A schedule was removed"},
	{Name: "schedule.published", Description: "A schedule was published to participants"},
	{Name: "schedule.optimized", Description: "An optimization run finished for a schedule"},
	{Name: "game.created", Description: "A game was added to a schedule"},
	{Name: "game.updated", Description: "Game details changed"},
	{Name: "game.started", Description: "A game kicked off"},
	{Name: "game.completed", Description: "A game finished"},
	{Name: "game.cancelled", Description: "A game was cancelled"},
	{Name: "game.rescheduled", Description: "A game moved to another slot"},
	{Name: "conflict.detected", Description: "A scheduling conflict was found"},
	{Name: "conflict.resolved", Description: "A scheduling conflict was resolved"},
	{Name: "export.started", Description: "A schedule export began"},
	{Name: "export.completed", Description: "A schedule export is ready"},
	{Name: "export.failed", Description: "A schedule export failed"},
}
