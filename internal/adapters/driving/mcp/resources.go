package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Resources carry no user identity, so only public documents are exposed.
const (
	documentsURI = "lexis://documents"
	mimeJSON     = "application/json"
	mimeText     = "text/plain"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Public documents in the library",
		MIMEType:    mimeJSON,
	}, s.readDocumentList)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document-content",
		Description: "Full text of a public document",
		MIMEType:    mimeText,
	}, s.readDocument)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}/details",
		Name:        "document-details",
		Description: "Metadata and chunk count of a public document",
		MIMEType:    mimeJSON,
	}, s.readDocument)
}

type documentEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Citation string `json:"citation,omitempty"`
	URI      string `json:"uri"`
}

func (s *Server) readDocumentList(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docs, err := s.documents.List(ctx, domain.CorpusFilter{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	entries := make([]documentEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, documentEntry{
			ID:       d.ID,
			Title:    d.Title,
			Type:     d.Type.String(),
			Citation: d.Citation,
			URI:      documentsURI + "/" + d.ID,
		})
	}
	return jsonResult(req.Params.URI, entries)
}

// readDocument serves both the content and the details templates.
func (s *Server) readDocument(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, view, ok := parseDocumentURI(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	doc, err := s.documents.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	case !doc.Public:
		return nil, mcp.ResourceNotFoundError(uri)
	}

	if view == "details" {
		details, err := s.documents.GetDetails(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("getting details of %s: %w", id, err)
		}
		return jsonResult(uri, map[string]any{
			"id":         details.ID,
			"title":      details.Title,
			"type":       details.Type.String(),
			"citation":   details.Citation,
			"chunkCount": details.ChunkCount,
			"createdAt":  details.CreatedAt,
			"metadata":   details.Metadata,
		})
	}

	content, err := s.documents.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting content of %s: %w", id, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeText, Text: content}},
	}, nil
}

// parseDocumentURI splits lexis://documents/{id}[/details].
func parseDocumentURI(uri string) (id, view string, ok bool) {
	rest, found := strings.CutPrefix(uri, documentsURI+"/")
	if !found {
		return "", "", false
	}

	id, view, _ = strings.Cut(rest, "/")
	if id == "" || (view != "" && view != "details") {
		return "", "", false
	}
	return id, view, true
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeJSON, Text: string(data)}},
	}, nil
}
