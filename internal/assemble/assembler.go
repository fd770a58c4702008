// Package assemble merges the turn's grounding material into one bounded
// context. The truncation rule decides what the model gets to see, so it is
// deterministic and runs on already-fetched data only.
package assemble

import (
	"fmt"
	"strings"

	"github.com/mlenarti/itinera/internal/intent"
	"github.com/mlenarti/itinera/internal/retrieval"
	"github.com/mlenarti/itinera/internal/travel"
)

// sectionSep joins sections in the rendered context and counts toward the
// budget.
const sectionSep = "\n\n"

type Kind string

const (
	KindIntent   Kind = "intent"
	KindLiveData Kind = "live_data"
	KindPassage  Kind = "passage"
)

// Section is one whole item of grounding text. Sections are added or
// dropped atomically; the assembler never cuts inside one.
type Section struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Context is the assembled grounding for one turn, in priority order:
// intent summary, live data, passages by rank. Size never exceeds the
// budget it was assembled under.
type Context struct {
	Sections  []Section `json:"sections"`
	Size      int       `json:"size"`
	Truncated bool      `json:"truncated"`
}

// Text renders the context for prompting.
func (c Context) Text() string {
	parts := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		parts[i] = s.Text
	}
	return strings.Join(parts, sectionSep)
}

// Empty reports whether no grounding survived assembly.
func (c Context) Empty() bool { return len(c.Sections) == 0 }

// WithoutLast returns a copy with the lowest-priority section dropped. The
// prompt builder uses it when even a trimmed history leaves the prompt over
// its ceiling.
func (c Context) WithoutLast() Context {
	if len(c.Sections) == 0 {
		return c
	}
	return build(c.Sections[:len(c.Sections)-1], true)
}

// Assemble accumulates candidate sections in priority order and stops at
// the first one that would push the running size past the budget. Items are
// kept whole: a section either fits entirely or is dropped along with
// everything ranked below it.
func Assemble(it intent.Intent, results []travel.FetchResult, passages []retrieval.Passage, budget int) Context {
	candidates := make([]Section, 0, 1+len(results)+len(passages))
	candidates = append(candidates, Section{
		Kind:  KindIntent,
		Label: "interpretation",
		Text:  it.Summary(),
	})
	for _, r := range results {
		if r.Status != travel.StatusSuccess || strings.TrimSpace(r.Summary) == "" {
			continue
		}
		candidates = append(candidates, Section{
			Kind:  KindLiveData,
			Label: r.Source,
			Text:  fmt.Sprintf("[%s]\n%s", title(r.Source), r.Summary),
		})
	}
	for i, p := range passages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		candidates = append(candidates, Section{
			Kind:  KindPassage,
			Label: fmt.Sprintf("reference %d", i+1),
			Text:  fmt.Sprintf("[Reference %d]\n%s", i+1, p.Text),
		})
	}

	var kept []Section
	size := 0
	truncated := false
	for _, s := range candidates {
		add := len(s.Text)
		if len(kept) > 0 {
			add += len(sectionSep)
		}
		if size+add > budget {
			truncated = true
			break
		}
		kept = append(kept, s)
		size += add
	}
	return Context{Sections: kept, Size: size, Truncated: truncated}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func build(sections []Section, truncated bool) Context {
	size := 0
	for i, s := range sections {
		if i > 0 {
			size += len(sectionSep)
		}
		size += len(s.Text)
	}
	return Context{Sections: append([]Section(nil), sections...), Size: size, Truncated: truncated}
}
