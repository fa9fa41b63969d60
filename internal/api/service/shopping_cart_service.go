package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"foodgram/internal/api/repository"
	"foodgram/internal/shoppinglist"
)

// Export formats.
const (
	FormatPDF  = "pdf"
	FormatText = "txt"
)

// Document is a rendered file ready to be sent as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ShoppingCartService interface {
	// Export aggregates the ingredients of every recipe in the user's cart.
	Export(ctx context.Context, userID int64, format string) (*Document, error)
}

type shoppingCartService struct {
	relations repository.RelationRepository
	opts      shoppinglist.RenderOptions
	log       *zap.Logger
}

func NewShoppingCartService(relations repository.RelationRepository, opts shoppinglist.RenderOptions, log *zap.Logger) ShoppingCartService {
	return &shoppingCartService{relations: relations, opts: opts, log: log}
}

func (s *shoppingCartService) Export(ctx context.Context, userID int64, format string) (*Document, error) {
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatText {
		return nil, NewValidationError("format", fmt.Sprintf("unsupported format %q, use pdf or txt", format))
	}

	rows, err := s.relations.CartRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := shoppinglist.Aggregate(rows)

	if format == FormatText {
		return &Document{
			Filename:    "shopping_cart.txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        shoppinglist.RenderText(items, s.opts),
		}, nil
	}

	data, err := shoppinglist.RenderPDF(items, s.opts)
	if err != nil {
		return nil, err
	}
	s.log.Debug("shopping list exported", zap.Int64("user_id", userID), zap.Int("items", len(items)))
	return &Document{Filename: "shopping_cart.pdf", ContentType: "application/pdf", Data: data}, nil
}
