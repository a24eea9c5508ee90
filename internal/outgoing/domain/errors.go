package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyBundle rejects bundle construction over zero messages.
	ErrEmptyBundle = errors.New("outgoing: bundle has no messages")
	// ErrNoMessagesToRender rejects document assembly from a bundle that
	// never received a message. Distinct from ErrEmptyBundle so call sites
	// can tell a construction error from a usage error.
	ErrNoMessagesToRender = errors.New("outgoing: cannot render a document without messages")
	// ErrAlreadyPublished rejects a second publish of the same message.
	ErrAlreadyPublished = errors.New("outgoing: message already published")
	// ErrMessageNotFound is returned by stores for unknown message ids.
	ErrMessageNotFound = errors.New("outgoing: message not found")
	// ErrBundleInFlight rejects a second concurrent peek for the same
	// receiver and category while a bundle is still awaiting dequeue.
	ErrBundleInFlight = errors.New("outgoing: a bundle is already in flight for this receiver and category")
	// ErrBundleNotFound is returned by bundle stores for unknown bundle ids.
	ErrBundleNotFound = errors.New("outgoing: bundle not found")
	// ErrNothingToPeek signals an empty queue for the receiver and category.
	ErrNothingToPeek = errors.New("outgoing: no unpublished messages to peek")
)

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}

// ProcessTypesDoNotMatchError identifies messages whose business reason
// deviates within one bundle.
type ProcessTypesDoNotMatchError struct {
	MessageIDs []uuid.UUID
}

func (e *ProcessTypesDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: process types do not match across messages %s", joinIDs(e.MessageIDs))
}

// ReceiverNumbersDoNotMatchError identifies messages whose receiver number
// deviates within one bundle.
type ReceiverNumbersDoNotMatchError struct {
	MessageIDs []uuid.UUID
}

func (e *ReceiverNumbersDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: receiver numbers do not match across messages %s", joinIDs(e.MessageIDs))
}

// ReceiverRolesDoNotMatchError identifies the message whose receiver role
// deviates from the bundle header.
type ReceiverRolesDoNotMatchError struct {
	MessageID uuid.UUID
}

func (e *ReceiverRolesDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: receiver role of message %s does not match the bundle", e.MessageID)
}

// SenderNumbersDoNotMatchError identifies the message whose sender number
// deviates from the bundle header.
type SenderNumbersDoNotMatchError struct {
	MessageID uuid.UUID
}

func (e *SenderNumbersDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: sender number of message %s does not match the bundle", e.MessageID)
}

// SenderRolesDoNotMatchError identifies the message whose sender role
// deviates from the bundle header.
type SenderRolesDoNotMatchError struct {
	MessageID uuid.UUID
}

func (e *SenderRolesDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: sender role of message %s does not match the bundle", e.MessageID)
}

// DocumentTypesDoNotMatchError identifies the message whose document type
// deviates from the bundle header.
type DocumentTypesDoNotMatchError struct {
	MessageID uuid.UUID
}

func (e *DocumentTypesDoNotMatchError) Error() string {
	return fmt.Sprintf("outgoing: document type of message %s does not match the bundle", e.MessageID)
}
