package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/auth"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	outgoingapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/application"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/interfaces"
)

// Handler provides the B2B peek and dequeue endpoints. The receiver is the
// authenticated market actor on the request context.
type Handler struct {
	service *outgoingapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *outgoingapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("outgoing handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/peek/{category}, /api/v1/dequeue/{bundleId} and
// /api/v1/bundles/{bundleId}/export.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v1/peek/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePeek(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/dequeue/"):
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleDequeue(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/bundles/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handlePeek(w http.ResponseWriter, r *http.Request) {
	receiver := auth.ActorFromContext(r.Context())
	if receiver.IsZero() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/peek/")
	if name == "" || strings.Contains(name, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	category, err := market.ParseMessageCategory(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := documents.FormatCimXml
	if value := r.URL.Query().Get("format"); value != "" {
		format, err = documents.ParseFormat(value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Peek(r.Context(), receiver, category, format)
	if err != nil {
		if errors.Is(err, domain.ErrNothingToPeek) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, "peek error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(result.Format))
	w.Header().Set("MessageId", result.BundleID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Document)
}

func (h *Handler) handleDequeue(w http.ResponseWriter, r *http.Request) {
	receiver := auth.ActorFromContext(r.Context())
	if receiver.IsZero() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/dequeue/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	bundleID, err := uuid.Parse(id)
	if err != nil {
		http.Error(w, "invalid bundle id", http.StatusBadRequest)
		return
	}

	if err := h.service.Dequeue(r.Context(), receiver, bundleID); err != nil {
		if errors.Is(err, domain.ErrBundleNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, "dequeue error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	receiver := auth.ActorFromContext(r.Context())
	if receiver.IsZero() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bundles/")
	id, ok := strings.CutSuffix(rest, "/export")
	if !ok || id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	bundleID, err := uuid.Parse(id)
	if err != nil {
		http.Error(w, "invalid bundle id", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		http.Error(w, "unknown export format", http.StatusBadRequest)
		return
	}

	bundle, messages, err := h.service.ExportBundle(r.Context(), receiver, bundleID)
	if err != nil {
		if errors.Is(err, domain.ErrBundleNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = interfaces.BuildBundlePDF(bundle, messages)
		contentType = "application/pdf"
	case "xlsx":
		data, err = interfaces.BuildBundleXLSX(bundle, messages)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bundle-`+bundleID.String()+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentTypeFor(format documents.Format) string {
	if format == documents.FormatCimJson {
		return "application/json"
	}
	return "application/xml"
}
