package guide

// GearSlot is one equipment position recovered from embedded page data.
// Text fields are never nil; ImageURL is empty when the page carried no image.
type GearSlot struct {
	Slot               string `json:"slot"`
	Name               string `json:"name"`
	BasicAttributes    string `json:"basic_attributes"`
	AdvancedAttributes string `json:"advanced_attributes"`
	ImageURL           string `json:"image_url,omitempty"`
}

// ExtractionResult is the summary produced by a single Scrape call.
//
// When Err is set every other field holds its zero value (GearSlots is an
// empty, non-nil slice). Gearing only ever contains the attribute priority
// and legendary affix lines.
type ExtractionResult struct {
	Title      string     `json:"title"`
	Gearing    string     `json:"gearing"`
	PlannerURL string     `json:"planner_url"`
	GearSlots  []GearSlot `json:"gear_slots"`
	Food       string     `json:"food"`
	Serum      string     `json:"serum"`
	Err        error      `json:"-"`
}

// Failed reports whether the scrape short-circuited with an error.
func (r *ExtractionResult) Failed() bool {
	return r.Err != nil
}

func newResult() *ExtractionResult {
	return &ExtractionResult{GearSlots: []GearSlot{}}
}

func failedResult(err error) *ExtractionResult {
	result := newResult()
	result.Err = err
	return result
}
