package models

// ContentType enumerates the script shapes the pipeline understands.
// The extractor reads different fields per type; the pipeline itself
// treats every type the same way.
type ContentType string

const (
	ContentTypeStory ContentType = "story"
	ContentTypeMeme  ContentType = "meme"
	ContentTypeFree  ContentType = "free"
)

// CharacterProfile describes one character in the script roster.
// Only the public image URL and the consistency description are
// consumed here; everything else lives in the character service.
type CharacterProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"` // consistency description for prompts
	ImageURL    string `json:"image_url,omitempty"`
}

// DialogueLine is one spoken line inside a dialogue segment
type DialogueLine struct {
	Character string `json:"character"`
	Line      string `json:"line"`
}

// Segment is one ~8 second unit of a script. A segment carries either
// narration or dialogue, never both.
//
// FirstFrame and LastFrame are optional keyframes for visual
// continuity: setting a segment's FirstFrame to the closing frame of
// the previous segment chains them. A FirstFrame seeds generation and
// suppresses the character reference images for that segment.
type Segment struct {
	SegmentNumber   int            `json:"segment_number"` // 1-based, dense within a script
	Scene           string         `json:"scene"`
	Narration       string         `json:"narration,omitempty"`
	Dialogue        []DialogueLine `json:"dialogue,omitempty"`
	VisualComedy    string         `json:"visual_comedy,omitempty"` // meme scripts
	Background      string         `json:"background,omitempty"`
	CharacterIDs    []string       `json:"character_ids,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	Camera          string         `json:"camera,omitempty"`
	Lighting        string         `json:"lighting,omitempty"`
	Mood            string         `json:"mood,omitempty"`
	FirstFrame      *ImageRef      `json:"first_frame,omitempty"`
	LastFrame       *ImageRef      `json:"last_frame,omitempty"`
}

// Script is the ordered collection of segments plus the character
// roster for one piece of content. Segment order is the canonical
// playback and concatenation order and must never be reordered.
type Script struct {
	Title       string                      `json:"title"`
	ContentType ContentType                 `json:"content_type"`
	Segments    []Segment                   `json:"segments"`
	Characters  map[string]CharacterProfile `json:"characters,omitempty"`
}

// Segment returns the segment with the given 1-based number
func (s *Script) Segment(number int) (*Segment, bool) {
	for i := range s.Segments {
		if s.Segments[i].SegmentNumber == number {
			return &s.Segments[i], true
		}
	}
	return nil, false
}

// SegmentPrompt is the extractor's output for one segment
type SegmentPrompt struct {
	Prompt            string   `json:"prompt"`
	DurationSeconds   int      `json:"duration_seconds"`
	CharactersPresent []string `json:"characters_present"`
	ContentType       string   `json:"content_type"`
}
