package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/modflags/internal/antidelete"
	"github.com/alfredjeanlab/modflags/internal/format"
	"github.com/alfredjeanlab/modflags/internal/model"
)

type identifierResponse struct {
	Label    string `json:"label"`
	Copyable string `json:"copyable"`
}

// handleFormatIdentifier handles GET /v1/format/identifier?id=&kind=.
func (s *Server) handleFormatIdentifier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a 64-bit integer")
		return
	}
	resp := identifierResponse{Label: format.Identifier(id), Copyable: format.CopyableID(id)}
	if kind := q.Get("kind"); kind != "" {
		ns, ok := model.ParseNamespace(kind)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown kind "+kind)
			return
		}
		resp.Label = format.IdentifierWithKind(id, ns)
	}
	writeJSON(w, http.StatusOK, resp)
}

type formatDeletedRequest struct {
	Text      string `json:"text"`
	DeletedAt *int32 `json:"deleted_at"`
}

type renderedText struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

// handleFormatDeleted handles POST /v1/format/deleted.
func (s *Server) handleFormatDeleted(w http.ResponseWriter, r *http.Request) {
	var req formatDeletedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := renderedText{Text: format.DeletedMessageText(req.Text)}
	if req.DeletedAt != nil {
		resp.Caption = format.DeletedTimestamp(*req.DeletedAt, s.location)
	}
	writeJSON(w, http.StatusOK, resp)
}

type deleteMessagesRequest struct {
	Messages  []model.Message `json:"messages"`
	DeletedBy *model.PeerID   `json:"deleted_by"`
}

// handleDeleteMessages handles POST /v1/messages/delete. It returns what
// the host should do with the batch: store marked copies or remove it.
func (s *Server) handleDeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req deleteMessagesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}
	writeJSON(w, http.StatusOK, s.antiDelete.Apply(r.Context(), req.Messages, req.DeletedBy))
}

// handleRenderMessage handles POST /v1/messages/render.
func (s *Server) handleRenderMessage(w http.ResponseWriter, r *http.Request) {
	var msg model.Message
	if err := decodeBody(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text, caption := antidelete.Render(msg, s.location)
	writeJSON(w, http.StatusOK, renderedText{Text: text, Caption: caption})
}

type peerLabelResponse struct {
	Label    string `json:"label"`
	Short    string `json:"short"`
	Copyable string `json:"copyable"`
}

// handlePeerLabel handles GET /v1/peers/{kind}/{id}/label. It returns 404
// while the resolver is disabled.
func (s *Server) handlePeerLabel(w http.ResponseWriter, r *http.Request) {
	ns, ok := model.ParseNamespace(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind "+r.PathValue("kind"))
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a 64-bit integer")
		return
	}
	peer := model.PeerID{Namespace: ns, ID: id}

	label, ok := s.resolver.PeerLabel(peer)
	if !ok {
		writeError(w, http.StatusNotFound, "resolver is disabled")
		return
	}
	short, _ := s.resolver.ShortLabel(peer)
	writeJSON(w, http.StatusOK, peerLabelResponse{
		Label:    label,
		Short:    short,
		Copyable: s.resolver.CopyableID(peer),
	})
}

// handleMessageLabel handles GET /v1/messages/{id}/label.
func (s *Server) handleMessageLabel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a 32-bit integer")
		return
	}
	label, ok := s.resolver.MessageLabel(model.MessageID{ID: int32(id)})
	if !ok {
		writeError(w, http.StatusNotFound, "resolver is disabled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"label": label})
}
