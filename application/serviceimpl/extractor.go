package serviceimpl

import (
	"fmt"
	"strings"

	"clipforge/domain/models"
	"clipforge/domain/services"
)

const defaultSegmentSeconds = 8

// Extractor flattens one script segment into a single natural-language
// provider prompt plus metadata. Pure transform over the script, no I/O.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract builds the prompt for the given 1-based segment number.
// Empty scene or speech text is replaced with a deterministic
// placeholder; extraction always produces a non-empty prompt.
func (e *Extractor) Extract(script *models.Script, segmentNumber int) (*models.SegmentPrompt, error) {
	if script == nil || len(script.Segments) == 0 {
		return nil, services.ErrEmptyScript
	}
	if segmentNumber < 1 || segmentNumber > len(script.Segments) {
		return nil, fmt.Errorf("%w: segment %d of %d", services.ErrSegmentNotFound, segmentNumber, len(script.Segments))
	}

	seg, ok := script.Segment(segmentNumber)
	if !ok {
		return nil, fmt.Errorf("%w: segment %d", services.ErrSegmentNotFound, segmentNumber)
	}

	var parts []string

	scene := strings.TrimSpace(seg.Scene)
	if scene == "" {
		scene = fmt.Sprintf("A cinematic establishing shot for \"%s\", segment %d.", script.Title, segmentNumber)
	}
	parts = append(parts, scene)

	if bg := strings.TrimSpace(seg.Background); bg != "" {
		parts = append(parts, "Background: "+bg)
	}

	// roster lookups keep character appearance consistent across
	// segments; ids missing from the roster are skipped
	for _, id := range seg.CharacterIDs {
		profile, found := script.Characters[id]
		if !found {
			continue
		}
		desc := strings.TrimSpace(profile.Description)
		if desc == "" {
			continue
		}
		name := profile.Name
		if name == "" {
			name = id
		}
		parts = append(parts, fmt.Sprintf("%s appearance: %s", name, desc))
	}

	parts = append(parts, e.speechText(script, seg, segmentNumber))

	if seg.Camera != "" {
		parts = append(parts, "Camera: "+seg.Camera)
	}
	if seg.Lighting != "" {
		parts = append(parts, "Lighting: "+seg.Lighting)
	}
	if seg.Mood != "" {
		parts = append(parts, "Mood: "+seg.Mood)
	}

	duration := seg.DurationSeconds
	if duration <= 0 {
		duration = defaultSegmentSeconds
	}

	parts = append(parts, productionNotes(script.ContentType, duration))

	return &models.SegmentPrompt{
		Prompt:            strings.Join(parts, "\n\n"),
		DurationSeconds:   duration,
		CharactersPresent: append([]string(nil), seg.CharacterIDs...),
		ContentType:       string(script.ContentType),
	}, nil
}

// speechText resolves the narration-or-dialogue content of a segment.
// A segment carries one or the other, never both.
func (e *Extractor) speechText(script *models.Script, seg *models.Segment, segmentNumber int) string {
	if narration := strings.TrimSpace(seg.Narration); narration != "" {
		return "Narration (voice-over): " + narration
	}

	if len(seg.Dialogue) > 0 {
		var lines []string
		for _, d := range seg.Dialogue {
			line := strings.TrimSpace(d.Line)
			if line == "" {
				continue
			}
			speaker := d.Character
			if speaker == "" {
				speaker = "Character"
			}
			lines = append(lines, fmt.Sprintf("%s says: \"%s\"", speaker, line))
		}
		if len(lines) > 0 {
			return "Dialogue:\n" + strings.Join(lines, "\n")
		}
	}

	if comedy := strings.TrimSpace(seg.VisualComedy); comedy != "" {
		return "Visual comedy: " + comedy
	}

	return fmt.Sprintf("A quiet, atmospheric moment from \"%s\", segment %d. No speech in this clip.",
		script.Title, segmentNumber)
}

// productionNotes is the fixed instruction block appended to every
// prompt. Phrasing varies per content type; the contract does not.
func productionNotes(contentType models.ContentType, durationSeconds int) string {
	common := fmt.Sprintf(
		"Production notes: All speech must fit exactly within %d seconds. "+
			"End the clip with a smooth transition into the next scene. "+
			"Complete every motion and sentence; no abrupt cutoffs.",
		durationSeconds)

	switch contentType {
	case models.ContentTypeStory:
		return common + " Narration is voice-over only and must never be spoken by an on-screen character."
	case models.ContentTypeMeme:
		return common + " Keep the comedic timing tight; the visual gag is the focus of the clip."
	default:
		return common + " Keep the delivery clear and easy to follow."
	}
}
