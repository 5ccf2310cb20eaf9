package pathstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/jobparse/internal/doctree"
)

// Key layout:
//
//	jobparse/documents/<doc_id>/document     full Document
//	jobparse/documents/<doc_id>/meta         DocumentSummary
//	jobparse/documents/<doc_id>/suggestions  validator output
//	jobparse/by_hash/<content_hash>/<doc_id> dedup index
const (
	documentsPrefix = "jobparse/documents"
	hashPrefix      = "jobparse/by_hash"
	sourceTag       = "jobparse:"
)

func DocumentPath(docID string) string {
	return documentsPrefix + "/" + docID
}

func hashPath(hash, docID string) string {
	return hashPrefix + "/" + hash + "/" + docID
}

// ContentHash is the dedup key for extracted posting text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DocumentSummary is the small record listed by ListDocuments.
type DocumentSummary struct {
	DocumentID       string    `json:"document_id"`
	Source           string    `json:"source,omitempty"`
	Filename         string    `json:"filename,omitempty"`
	Platform         string    `json:"platform,omitempty"`
	Title            string    `json:"title,omitempty"`
	Company          string    `json:"company,omitempty"`
	Location         string    `json:"location,omitempty"`
	ContentHash      string    `json:"content_hash"`
	OverallScore     float64   `json:"overall_score"`
	ValidationPassed bool      `json:"validation_passed"`
	SectionCount     int       `json:"section_count"`
	BulletCount      int       `json:"bullet_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// SummaryOf builds the listing record for doc.
func SummaryOf(doc *doctree.Document, filename, platform, hash string) DocumentSummary {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return DocumentSummary{
		DocumentID:       doc.DocumentID,
		Source:           doc.OriginalURL,
		Filename:         filename,
		Platform:         platform,
		Title:            deref(doc.JobMetadata.Title),
		Company:          deref(doc.JobMetadata.Company),
		Location:         deref(doc.JobMetadata.Location),
		ContentHash:      hash,
		OverallScore:     doc.StructureQuality.OverallStructureScore,
		ValidationPassed: doc.ProcessingInfo.ValidationPassed,
		SectionCount:     doc.ProcessingInfo.SectionCount,
		BulletCount:      doc.ProcessingInfo.BulletCount,
		CreatedAt:        doc.Timestamps.CreatedAt,
	}
}

// PutDocument stores the document, its summary and the hash index entry.
// The index is written last so a crash never leaves a dangling dedup hit.
func (c *Client) PutDocument(ctx context.Context, doc *doctree.Document, sum DocumentSummary) error {
	base := DocumentPath(doc.DocumentID)
	src := sourceTag + doc.DocumentID

	if err := c.PutNode(ctx, base+"/document", NodeRequest{Value: doc, Source: src, Salience: 0.5}); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	if err := c.PutNode(ctx, base+"/meta", NodeRequest{Value: sum, Source: src, Salience: 0.5}); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}
	if sum.ContentHash != "" {
		idx := map[string]any{"created_at": sum.CreatedAt.Format(time.RFC3339)}
		if err := c.PutNode(ctx, hashPath(sum.ContentHash, doc.DocumentID), NodeRequest{Value: idx, Source: src, Salience: 0.1}); err != nil {
			return fmt.Errorf("store hash index: %w", err)
		}
	}
	return nil
}

// GetDocument returns the stored document, or nil when absent.
func (c *Client) GetDocument(ctx context.Context, docID string) (*doctree.Document, error) {
	node, err := c.GetNode(ctx, DocumentPath(docID)+"/document")
	if err != nil || node == nil {
		return nil, err
	}
	var doc doctree.Document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns up to limit document summaries.
func (c *Client) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	nodes, err := c.ListChildren(ctx, documentsPrefix, 0)
	if err != nil {
		return nil, err
	}
	out := []DocumentSummary{}
	for i := range nodes {
		if nodes[i].LastSegment() != "meta" {
			continue
		}
		var sum DocumentSummary
		if err := nodes[i].Decode(&sum); err != nil {
			return nil, err
		}
		out = append(out, sum)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// DeleteDocument removes a document, its summary, suggestions and hash
// index entry. It reports whether the document existed.
func (c *Client) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	base := DocumentPath(docID)
	meta, err := c.GetNode(ctx, base+"/meta")
	if err != nil {
		return false, err
	}
	if meta == nil {
		return false, nil
	}
	var sum DocumentSummary
	if err := meta.Decode(&sum); err == nil && sum.ContentHash != "" {
		if err := c.DeleteNode(ctx, hashPath(sum.ContentHash, docID), false); err != nil {
			return true, fmt.Errorf("delete hash index: %w", err)
		}
	}
	if err := c.DeleteNode(ctx, base, true); err != nil {
		return true, err
	}
	return true, nil
}

// FindByHash returns the ID of a stored document with the given content hash.
func (c *Client) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	nodes, err := c.ListChildren(ctx, hashPrefix+"/"+hash, 1)
	if err != nil {
		return "", false, err
	}
	if len(nodes) == 0 {
		return "", false, nil
	}
	return nodes[0].LastSegment(), true, nil
}

// PutSuggestions stores validator output beside the document.
func (c *Client) PutSuggestions(ctx context.Context, docID string, suggestions any) error {
	err := c.PutNode(ctx, DocumentPath(docID)+"/suggestions", NodeRequest{
		Value:    suggestions,
		Source:   sourceTag + docID,
		Salience: 0.3,
	})
	if err != nil {
		return fmt.Errorf("store suggestions: %w", err)
	}
	return nil
}

// GetSuggestions returns the raw stored suggestions, or nil when absent.
func (c *Client) GetSuggestions(ctx context.Context, docID string) (json.RawMessage, error) {
	node, err := c.GetNode(ctx, DocumentPath(docID)+"/suggestions")
	if err != nil || node == nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(node.Value))) == 0 {
		return nil, nil
	}
	return node.Value, nil
}
