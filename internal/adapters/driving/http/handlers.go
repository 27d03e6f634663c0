package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

type uploadResponse struct {
	DocumentID string `json:"documentId"`
	ChunkCount int    `json:"chunkCount"`
}

type retrieveRequest struct {
	Query       string   `json:"query"`
	UserID      string   `json:"userId"`
	Types       []string `json:"types"`
	DocumentIDs []string `json:"documentIds"`
	PublicOnly  bool     `json:"publicOnly"`
	TopK        int      `json:"topK"`
	MinScore    *float64 `json:"minScore"`
	Granularity string   `json:"granularity"`
}

type candidateResponse struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"documentId"`
	ChunkIndex int     `json:"chunkIndex"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Citation   string  `json:"citation,omitempty"`
}

type retrieveResponse struct {
	Results []candidateResponse `json:"results"`
}

type documentResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Citation  string         `json:"citation,omitempty"`
	Public    bool           `json:"public"`
	OwnerID   string         `json:"ownerId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type listResponse struct {
	Documents []documentResponse `json:"documents"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload ingests a multipart upload with fields file, fileName,
// userId and the optional title, type, citation and public.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, fmt.Errorf("%w: parsing multipart form: %w", domain.ErrInvalidInput, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing file field", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err))
		return
	}

	fileName := r.FormValue("fileName")
	if fileName == "" {
		fileName = header.Filename
	}

	public := false
	if v := r.FormValue("public"); v != "" {
		public, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: public must be a boolean", domain.ErrInvalidInput))
			return
		}
	}

	result, err := s.ingestion.Ingest(r.Context(), domain.Upload{
		FileName: fileName,
		Content:  content,
		OwnerID:  r.FormValue("userId"),
		Title:    r.FormValue("title"),
		Type:     domain.DocumentType(r.FormValue("type")),
		Citation: r.FormValue("citation"),
		Public:   public,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocumentID: result.Document.ID,
		ChunkCount: result.ChunkCount,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding request: %w", domain.ErrInvalidInput, err))
		return
	}
	if req.Granularity != "" && !domain.Granularity(req.Granularity).IsValid() {
		writeError(w, fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, req.Granularity))
		return
	}

	types := make([]domain.DocumentType, 0, len(req.Types))
	for _, t := range req.Types {
		dt := domain.DocumentType(t)
		if !dt.IsValid() {
			writeError(w, fmt.Errorf("%w: document type %q", domain.ErrInvalidInput, t))
			return
		}
		types = append(types, dt)
	}

	opts := domain.RetrievalOptions{
		Filter: domain.CorpusFilter{
			OwnerID:     req.UserID,
			PublicOnly:  req.PublicOnly,
			Types:       types,
			DocumentIDs: req.DocumentIDs,
		},
		TopK:        req.TopK,
		Granularity: domain.Granularity(req.Granularity),
	}
	if req.MinScore != nil {
		opts.MinScore, opts.MinScoreSet = *req.MinScore, true
	}

	results, err := s.retrieval.Retrieve(r.Context(), req.Query, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := retrieveResponse{Results: make([]candidateResponse, len(results))}
	for i, c := range results {
		resp.Results[i] = candidateResponse{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Score:      c.Score,
			Excerpt:    c.Excerpt,
			Title:      c.Title,
			Type:       c.Type.String(),
			Citation:   c.Citation,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := domain.CorpusFilter{OwnerID: r.URL.Query().Get("userId")}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Types = []domain.DocumentType{domain.DocumentType(t)}
	}

	docs, err := s.documents.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listResponse{Documents: make([]documentResponse, len(docs))}
	for i := range docs {
		resp.Documents[i] = toDocumentResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.visibleDocument(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// handleDeleteDocument removes a document. Only its owner may delete it.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.visibleDocument(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if doc.OwnerID == "" || doc.OwnerID != r.URL.Query().Get("userId") {
		writeError(w, fmt.Errorf("%w: only the owner can delete a document", domain.ErrNotFound))
		return
	}

	if err := s.documents.Delete(r.Context(), doc.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// visibleDocument loads the {id} document if the requesting user may see it.
// Private documents of other users are reported as not found.
func (s *Server) visibleDocument(r *http.Request) (*domain.Document, error) {
	id := chi.URLParam(r, "id")
	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	filter := domain.CorpusFilter{OwnerID: r.URL.Query().Get("userId")}
	if !filter.Matches(doc) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

func toDocumentResponse(doc *domain.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Type:      doc.Type.String(),
		Citation:  doc.Citation,
		Public:    doc.Public,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
		Metadata:  doc.Metadata,
	}
}
