package commentary

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/director/internal/director/event"
)

// Templates is the external table of commentary templates (spec §4.4's
// "template storage"). Each slot may hold more than one candidate template;
// when more than one applies, the generator picks among them by hashing a
// stable key (event or tension id) with FNV-1a, so the same input always
// selects the same template without any mutable random state.
type Templates struct {
	EventCaptions   map[string][]string            `yaml:"event_captions"`
	TensionTeasers  map[event.TensionType][]string `yaml:"tension_teasers"`
	DramaticIrony   []string                        `yaml:"dramatic_irony"`
	ContextReminder []string                        `yaml:"context_reminder"`
	NarratorVoice   map[string][]string             `yaml:"narrator_voice"`
}

// eventCaptionKey builds the (event kind, subtype) lookup key used by
// EventCaptions, falling back to the bare kind when no subtype-specific
// template exists.
func eventCaptionKey(kind event.Type, subtype string) (specific, general string) {
	if subtype == "" {
		return string(kind), string(kind)
	}
	return fmt.Sprintf("%s|%s", kind, subtype), string(kind)
}

// DefaultTemplates returns a small built-in template set sufficient to
// exercise every commentary kind without requiring an external file —
// analogous to the Director's with_defaults() construction path.
func DefaultTemplates() Templates {
	return Templates{
		EventCaptions: map[string][]string{
			string(event.TypeBetrayal):    {"{primary_name} turns against {secondary_name}."},
			string(event.TypeDeath):       {"{primary_name} has died at {location}."},
			string(event.TypeConflict):    {"{primary_name} clashes with {secondary_name} at {location}."},
			string(event.TypeCooperation): {"{primary_name} and {secondary_name} strike an alliance."},
			string(event.TypeRitual):      {"{primary_name} leads a rite at {location}."},
			string(event.TypeBirth):       {"A new life joins {faction} at {location}."},
		},
		TensionTeasers: map[event.TensionType][]string{
			event.TensionBrewingBetrayal: {"Something is souring in the shadows of {location}."},
			event.TensionSuccession:      {"The question of who leads next grows sharper."},
			event.TensionRisingPower:     {"A new power rises, and the old guard watches uneasily."},
		},
		DramaticIrony:   {"{victim_name} still trusts {betrayer_name}, unaware of what has passed."},
		ContextReminder: {"{focus_name}'s story is still unfolding."},
		NarratorVoice: map[string][]string{
			string(event.TypeRitual): {"The old rites are not forgotten."},
			string(event.TypeDeath):  {"Death changes everything it touches."},
		},
	}
}

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_]+\}`)

// fill substitutes every {placeholder} in tmpl from values. If any
// placeholder in the template has no corresponding value, the template is
// unusable and fill returns ok=false — the placeholder-closure invariant
// (spec §8) is enforced here, at the single point templates are rendered.
func fill(tmpl string, values map[string]string) (rendered string, ok bool) {
	missing := false
	rendered = placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		key := token[1 : len(token)-1]
		v, present := values[key]
		if !present {
			missing = true
			return token
		}
		return v
	})
	if missing {
		return "", false
	}
	return rendered, true
}

// TemplateRepository loads a Templates table from storage.
type TemplateRepository interface {
	Load() (Templates, error)
}

// FileTemplateRepository loads templates from a YAML file, mirroring the
// Director's own YAML-based configuration loading.
type FileTemplateRepository struct {
	Path string
}

// Load reads and parses the YAML template file.
func (r FileTemplateRepository) Load() (Templates, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return Templates{}, fmt.Errorf("reading template file %s: %w", r.Path, err)
	}
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Templates{}, fmt.Errorf("parsing template file %s: %w", r.Path, err)
	}
	return t, nil
}
