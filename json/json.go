// Package json persists conversation history as versioned JSON files.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/bimrag"
)

const currentVersion = 1

// envelope is the v1 wire format for a persisted history.
type envelope struct {
	Version       int               `json:"version"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Conversations []conversationDTO `json:"conversations"`
}

type conversationDTO struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Query     string      `json:"query"`
	Answer    string      `json:"answer"`
	Sources   []sourceDTO `json:"sources"`
	CreatedAt time.Time   `json:"created_at"`
}

type sourceDTO struct {
	DocID      string `json:"doc_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	VideoLabel string `json:"video_label,omitempty"`
}

// MarshalHistory serializes conversations to JSON in v1 envelope format.
func MarshalHistory(convs []bimrag.Conversation, updatedAt time.Time) ([]byte, error) {
	env := envelope{
		Version:       currentVersion,
		UpdatedAt:     updatedAt,
		Conversations: make([]conversationDTO, len(convs)),
	}
	for i, c := range convs {
		env.Conversations[i] = marshalConversation(c)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalHistory deserializes conversations from JSON in v1 envelope
// format.
func UnmarshalHistory(data []byte) ([]bimrag.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != currentVersion {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	convs := make([]bimrag.Conversation, len(env.Conversations))
	for i, dto := range env.Conversations {
		if dto.ID == "" {
			return nil, fmt.Errorf("conversation %d: missing id", i)
		}
		convs[i] = unmarshalConversation(dto)
	}
	return convs, nil
}

func marshalConversation(c bimrag.Conversation) conversationDTO {
	sources := make([]sourceDTO, len(c.Sources))
	for i, s := range c.Sources {
		sources[i] = sourceDTO(s)
	}
	return conversationDTO{
		ID:        c.ID,
		Title:     c.Title,
		Query:     c.Query,
		Answer:    c.Answer,
		Sources:   sources,
		CreatedAt: c.CreatedAt,
	}
}

func unmarshalConversation(dto conversationDTO) bimrag.Conversation {
	sources := make([]bimrag.Source, len(dto.Sources))
	for i, s := range dto.Sources {
		sources[i] = bimrag.Source(s)
	}
	return bimrag.Conversation{
		ID:        dto.ID,
		Title:     dto.Title,
		Query:     dto.Query,
		Answer:    dto.Answer,
		Sources:   sources,
		CreatedAt: dto.CreatedAt,
	}
}

// Save writes conversations to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, convs []bimrag.Conversation) error {
	data, err := MarshalHistory(convs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads conversations from a JSON file. A missing file is an empty
// history.
func Load(path string) ([]bimrag.Conversation, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []bimrag.Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalHistory(data)
}

// Append adds c as the newest entry of the history at path, keeping at most
// limit entries (newest first). A limit of zero keeps everything.
func Append(path string, c bimrag.Conversation, limit int) error {
	convs, err := Load(path)
	if err != nil {
		return err
	}
	convs = append([]bimrag.Conversation{c}, convs...)
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return Save(path, convs)
}
