// Package documents defines the contract between the bundling layer and the
// format-specific market document writers, plus the serialized
// market-activity-record payloads that travel through the outgoing message
// store.
package documents

import (
	"context"
	"fmt"
	"time"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// Format is one of the supported wire formats.
type Format string

const (
	FormatCimXml  Format = "CimXml"
	FormatCimJson Format = "CimJson"
	FormatEbix    Format = "Ebix"
)

// ParseFormat parses a wire format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatCimXml, FormatCimJson, FormatEbix:
		return Format(name), nil
	}
	return "", fmt.Errorf("documents: unknown format %q", name)
}

// Header carries the envelope fields shared by every document of a bundle.
type Header struct {
	MessageID      string
	Timestamp      time.Time
	SenderNumber   market.ActorNumber
	SenderRole     market.ActorRole
	ReceiverNumber market.ActorNumber
	ReceiverRole   market.ActorRole
	BusinessReason market.BusinessReason
}

// Writer renders one (document type, format) pair. Write either produces a
// complete, well-formed document or fails without handing out any bytes.
type Writer interface {
	HandlesType(documentType market.DocumentType) bool
	HandlesFormat(format Format) bool
	Write(ctx context.Context, header Header, records []string) (*MarketDocumentStream, error)
}

// Registry dispatches to the writer handling a (document type, format) pair.
type Registry struct {
	writers []Writer
}

// NewRegistry constructs a registry over the given writers.
func NewRegistry(writers ...Writer) *Registry {
	return &Registry{writers: writers}
}

// Writer returns the writer for the pair, or an error when none is registered.
func (r *Registry) Writer(documentType market.DocumentType, format Format) (Writer, error) {
	for _, w := range r.writers {
		if w.HandlesType(documentType) && w.HandlesFormat(format) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("documents: no writer for %s/%s", documentType, format)
}

// Write selects the writer for the pair and renders the document.
func (r *Registry) Write(
	ctx context.Context,
	documentType market.DocumentType,
	format Format,
	header Header,
	records []string,
) (*MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := r.Writer(documentType, format)
	if err != nil {
		return nil, err
	}
	return w.Write(ctx, header, records)
}
