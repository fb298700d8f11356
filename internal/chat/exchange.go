package chat

import (
	"strings"

	"github.com/diogo/gemchat/internal/models"
)

// exchange accumulates one streaming response: the growing content and the
// deduplicated citation set, in first-seen order.
type exchange struct {
	content strings.Builder
	sources []models.Source
	seen    map[string]bool // keyed by URI
}

func newExchange() *exchange {
	return &exchange{seen: map[string]bool{}}
}

// apply folds one chunk into the accumulators. It reports whether anything
// changed and, when it did, the full patch to apply to the placeholder.
// Sources missing either field are dropped; duplicate URIs are merged.
func (e *exchange) apply(chunk models.StreamChunk) (Patch, bool) {
	changed := false

	for _, src := range chunk.Sources {
		if !src.Valid() || e.seen[src.URI] {
			continue
		}
		e.seen[src.URI] = true
		e.sources = append(e.sources, src)
		changed = true
	}

	if chunk.Text != "" {
		e.content.WriteString(chunk.Text)
		changed = true
	}

	if !changed {
		return Patch{}, false
	}
	return e.patch(), true
}

// patch returns the full accumulated state. Sources is nil while the set is
// empty so the rendered message shows no citation section.
func (e *exchange) patch() Patch {
	p := Patch{Content: e.content.String()}
	if len(e.sources) > 0 {
		p.Sources = make([]models.Source, len(e.sources))
		copy(p.Sources, e.sources)
	}
	return p
}
