package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/larder/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads from r and returns a Document without an ID.
	Parse(r io.Reader) (*core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the serializers for every supported extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".md":   MarkdownSerializer{},
		".yaml": YAMLSerializer{},
		".yml":  YAMLSerializer{},
		".json": JSONSerializer{},
	}
}

var errUnterminatedFrontmatter = errors.New("frontmatter started but no closing delimiter found")

// --- Markdown ---

// MarkdownSerializer reads notes with an optional YAML frontmatter block.
type MarkdownSerializer struct{}

func (MarkdownSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{Metadata: make(core.Metadata)}

	front, body, ok, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	if !ok {
		doc.Content = string(data)
		return doc, nil
	}

	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}
	if doc.Metadata == nil {
		doc.Metadata = make(core.Metadata)
	}
	doc.Content = string(body)
	return doc, nil
}

func (MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(doc.Metadata)); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

// splitFrontmatter separates a leading "---" block from the body.
// The closing delimiter must sit on its own line.
func splitFrontmatter(data []byte) (front, body []byte, ok bool, err error) {
	var rest []byte
	switch {
	case bytes.HasPrefix(data, []byte("---\n")):
		rest = data[4:]
	case bytes.HasPrefix(data, []byte("---\r\n")):
		rest = data[5:]
	default:
		return nil, data, false, nil
	}

	offset := 0
	for offset <= len(rest) {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest) + 1
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			front = rest[:offset]
			if next <= len(rest) {
				body = rest[next:]
			}
			return front, body, true, nil
		}
		offset = next
	}
	return nil, nil, false, errUnterminatedFrontmatter
}

// --- YAML ---

// YAMLSerializer treats the whole file as metadata; a "content" key becomes the body.
type YAMLSerializer struct{}

func (YAMLSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return fromPayload(payload), nil
}

func (YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	return yaml.Marshal(toPayload(doc))
}

// --- JSON ---

// JSONSerializer mirrors YAMLSerializer for .json documents.
type JSONSerializer struct{}

func (JSONSerializer) Parse(r io.Reader) (*core.Document, error) {
	payload := make(map[string]any)
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return fromPayload(payload), nil
}

func (JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	return json.MarshalIndent(toPayload(doc), "", "  ")
}

func fromPayload(payload map[string]any) *core.Document {
	doc := &core.Document{Metadata: core.Metadata(payload)}
	if c, ok := payload["content"].(string); ok {
		doc.Content = c
		delete(doc.Metadata, "content")
	}
	return doc
}

func toPayload(doc core.Document) map[string]any {
	payload := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		payload[k] = v
	}
	if doc.Content != "" {
		payload["content"] = doc.Content
	}
	return payload
}
