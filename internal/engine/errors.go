package engine

import "errors"

// Precondition violations. These abort the operation with no state mutation.
var (
	// ErrMissingState indicates a nil match, innings or over reference
	ErrMissingState = errors.New("engine: missing match/innings/over state")

	// ErrInningsCompleted indicates a delivery against a closed innings
	ErrInningsCompleted = errors.New("engine: innings already completed")

	// ErrOverMismatch indicates the delivery references a different over
	// than the one supplied, or the over's bowler differs
	ErrOverMismatch = errors.New("engine: delivery does not belong to supplied over")

	// ErrOverComplete indicates the over already holds 6 legal deliveries
	ErrOverComplete = errors.New("engine: over already complete")

	// ErrInvalidExtraType indicates an unknown extra classification
	ErrInvalidExtraType = errors.New("engine: invalid extra type")

	// ErrInvalidWicketKind indicates an unknown dismissal kind
	ErrInvalidWicketKind = errors.New("engine: invalid wicket kind")

	// ErrNotLatestDelivery indicates an undo target that is not the
	// chronologically last delivery of the match
	ErrNotLatestDelivery = errors.New("engine: only the most recent delivery can be undone")

	// ErrNothingToUndo indicates an undo with no recorded deliveries
	ErrNothingToUndo = errors.New("engine: no delivery to undo")
)
