package entity_test

import (
	"errors"
	"testing"
	"time"

	"condo-radar/internal/domain/entity"
)

func TestSource_Valid(t *testing.T) {
	tests := []struct {
		source entity.Source
		want   bool
	}{
		{entity.SourceForum, true},
		{entity.SourceBulletin, true},
		{entity.Source("rss"), false},
		{entity.Source(""), false},
	}
	for _, tt := range tests {
		if got := tt.source.Valid(); got != tt.want {
			t.Errorf("Source(%q).Valid() = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestDocument_Validate(t *testing.T) {
	base := func() *entity.Document {
		return &entity.Document{
			Title:       "Condo board dispute heads to tribunal",
			Link:        "https://example.com/post/1",
			PublishedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Source:      entity.SourceForum,
			Tags:        []string{"condominium act"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing published_at", func(t *testing.T) {
		doc := base()
		doc.PublishedAt = time.Time{}
		if err := doc.Validate(); !errors.Is(err, entity.ErrMissingPublishedAt) {
			t.Fatalf("Validate() = %v, want ErrMissingPublishedAt", err)
		}
	})

	t.Run("empty tags", func(t *testing.T) {
		doc := base()
		doc.Tags = nil
		if err := doc.Validate(); !errors.Is(err, entity.ErrNoMatchedTags) {
			t.Fatalf("Validate() = %v, want ErrNoMatchedTags", err)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		doc := base()
		doc.Source = "newsletter"
		var vErr *entity.ValidationError
		if err := doc.Validate(); !errors.As(err, &vErr) || vErr.Field != "source" {
			t.Fatalf("Validate() = %v, want ValidationError on source", err)
		}
	})
}
