package fs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/larder/pkg/core"
)

func TestSerializers(t *testing.T) {
	doc := core.Document{
		ID:      "nutrients/apple",
		Content: "Crisp and sweet.\n",
		Metadata: core.Metadata{
			"name":     "Apple",
			"calories": 52,
			"carbs":    "13.8",
		},
	}

	for ext, s := range DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Serialize(doc)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			parsed, err := s.Parse(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if strings.TrimSpace(parsed.Content) != strings.TrimSpace(doc.Content) {
				t.Errorf("content mismatch: want %q, got %q", doc.Content, parsed.Content)
			}
			if parsed.Metadata["name"] != "Apple" {
				t.Errorf("expected name 'Apple', got %v", parsed.Metadata["name"])
			}
			if parsed.Metadata["carbs"] != "13.8" {
				t.Errorf("expected carbs to stay a string, got %#v", parsed.Metadata["carbs"])
			}
			if _, ok := parsed.Metadata["content"]; ok {
				t.Error("content leaked into metadata")
			}
		})
	}
}

func TestMarkdownFrontmatter(t *testing.T) {
	s := MarkdownSerializer{}

	t.Run("No Frontmatter", func(t *testing.T) {
		doc, err := s.Parse(strings.NewReader("#food Snack 120kcal\n"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Content != "#food Snack 120kcal\n" {
			t.Errorf("unexpected content %q", doc.Content)
		}
		if len(doc.Metadata) != 0 {
			t.Errorf("expected empty metadata, got %v", doc.Metadata)
		}
	})

	t.Run("Dashes Inside Values", func(t *testing.T) {
		input := "---\nname: Rye---bread\nfat: 3\n---\nbody ---\n"
		doc, err := s.Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Metadata["name"] != "Rye---bread" {
			t.Errorf("expected name to keep dashes, got %v", doc.Metadata["name"])
		}
		if doc.Content != "body ---\n" {
			t.Errorf("unexpected content %q", doc.Content)
		}
	})

	t.Run("CRLF Delimiters", func(t *testing.T) {
		doc, err := s.Parse(strings.NewReader("---\r\nprotein: 4\r\n---\r\ntext"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Metadata["protein"] != 4 {
			t.Errorf("expected protein 4, got %#v", doc.Metadata["protein"])
		}
		if doc.Content != "text" {
			t.Errorf("unexpected content %q", doc.Content)
		}
	})

	t.Run("Unterminated", func(t *testing.T) {
		_, err := s.Parse(strings.NewReader("---\nname: x\n"))
		if !errors.Is(err, errUnterminatedFrontmatter) {
			t.Errorf("expected errUnterminatedFrontmatter, got %v", err)
		}
	})

	t.Run("Empty Block", func(t *testing.T) {
		doc, err := s.Parse(strings.NewReader("---\n---\nbody"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Metadata == nil || len(doc.Metadata) != 0 {
			t.Errorf("expected empty non-nil metadata, got %#v", doc.Metadata)
		}
	})
}
