package collection

import (
	"fmt"

	"github.com/okian/codex/internal/domain/model"
)

// Preview is a read-only view of an entry for the collection screen.
type Preview struct {
	EntryID  int               `json:"entry_id"`
	Tier     int               `json:"tier"`
	Ceiling  int               `json:"ceiling"`
	State    string            `json:"state"`
	Eligible bool              `json:"eligible"`
	Maxed    bool              `json:"maxed"`
	Category string            `json:"category"`
	Kind     string            `json:"kind"`
	Rarity   string            `json:"rarity"`
	Current  *model.StatChange `json:"current,omitempty"`
	Next     *model.StatChange `json:"next,omitempty"`

	// NextCondition is the level every item of Kind/Rarity must reach.
	NextCondition int    `json:"next_condition,omitempty"`
	CurrentText   string `json:"current_text"`
	NextText      string `json:"next_text"`
}

// Preview builds the view of entry id.
func (r *Registry) Preview(id int) (Preview, error) {
	e, err := r.Entry(id)
	if err != nil {
		return Preview{}, err
	}
	return previewOf(e), nil
}

func previewOf(e *Entry) Preview {
	next := e.Next()
	p := Preview{
		EntryID:  e.ID(),
		Tier:     e.Tier(),
		Ceiling:  e.Ceiling(),
		State:    e.State().String(),
		Eligible: e.Eligible(),
		Maxed:    e.Maxed(),
		Category: e.Category().String(),
		Kind:     next.Kind.String(),
		Rarity:   next.Rarity.String(),
	}

	if e.Tier() > 0 {
		c := e.Current().Contribution()
		p.Current = &c
		p.CurrentText = statText(c)
	} else {
		p.CurrentText = "-"
	}

	if e.Maxed() {
		p.NextText = "Max level"
		return p
	}
	c := next.Contribution()
	p.Next = &c
	p.NextCondition = next.LevelCondition
	p.NextText = fmt.Sprintf("Lv.%d %s", next.LevelCondition, statText(c))
	return p
}

func statText(c model.StatChange) string {
	return c.Stat.String() + " " + c.Format()
}
