package documents

import (
	"bytes"
	"io"
)

// MarketDocumentStream wraps a fully rendered document. It is written once by
// the producing writer and read once by the caller; after creation the caller
// owns it exclusively.
type MarketDocumentStream struct {
	reader *bytes.Reader
}

// NewMarketDocumentStream wraps rendered document bytes.
func NewMarketDocumentStream(document []byte) *MarketDocumentStream {
	return &MarketDocumentStream{reader: bytes.NewReader(document)}
}

// Read implements io.Reader over the document bytes.
func (s *MarketDocumentStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Len returns the number of unread bytes.
func (s *MarketDocumentStream) Len() int { return s.reader.Len() }

var _ io.Reader = (*MarketDocumentStream)(nil)
