// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for ingested
// document records.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/domain"
)

// CreateDocument inserts a record for an ingested file. The document ID is
// generated by the caller (it keys the chunks in the vector store) so the
// record and the stored chunks stay linked.
func CreateDocument(ctx context.Context, db *gorm.DB, id, filename, title string, chunkCount int) (*domain.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	d := &domain.Document{
		ID:         id,
		Filename:   filename,
		Title:      title,
		ChunkCount: chunkCount,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// CountDocuments returns the total number of ingested documents.
func CountDocuments(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Count(&total).Error
	return total, err
}

// ListDocumentsPage returns a page of document records ordered by upload
// time descending (most recent first). The caller computes offset and limit.
func ListDocumentsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
