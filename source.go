package bimrag

import "encoding/json"

// Source identifies a retrieved document or video backing part of an answer.
type Source struct {
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	VideoURL   string `json:"video_url"`
	VideoLabel string `json:"video_label"`
}

// UnmarshalJSON decodes a source record. Null fields decode as empty strings.
// Older backends send the video label under "label"; it is used when
// "video_label" is missing.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		DocID      *string `json:"doc_id"`
		Title      *string `json:"title"`
		Snippet    *string `json:"snippet"`
		VideoURL   *string `json:"video_url"`
		VideoLabel *string `json:"video_label"`
		Label      *string `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Source{
		DocID:      deref(raw.DocID),
		Title:      deref(raw.Title),
		Snippet:    deref(raw.Snippet),
		VideoURL:   deref(raw.VideoURL),
		VideoLabel: deref(raw.VideoLabel),
	}
	if raw.VideoLabel == nil {
		s.VideoLabel = deref(raw.Label)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DedupSources collapses sources sharing the same non-empty DocID to their
// first occurrence. Sources without a DocID are always kept. Order is
// preserved and the input slice is not modified.
func DedupSources(sources []Source) []Source {
	if sources == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.DocID != "" {
			if _, ok := seen[s.DocID]; ok {
				continue
			}
			seen[s.DocID] = struct{}{}
		}
		out = append(out, s)
	}
	return out
}
