package features

// DocumentJSON is the JSON projection of a document used for schema checks.
// Absent attributes and children are omitted (steps become null); empty
// ones are kept.
type DocumentJSON struct {
	Root       string            `json:"root"`
	Attributes map[string]string `json:"attributes"`
	Categories []CategoryJSON    `json:"categories"`
}

// CategoryJSON is the JSON projection of a category.
type CategoryJSON struct {
	Name     *string       `json:"name,omitempty"`
	Features []FeatureJSON `json:"features"`
}

// FeatureJSON is the JSON projection of a feature.
type FeatureJSON struct {
	ID          *string  `json:"id,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	Description *string  `json:"description,omitempty"`
	Steps       []string `json:"steps"`
	Notes       *string  `json:"notes,omitempty"`
}

// JSON returns the JSON projection of the document.
func (d *Document) JSON() DocumentJSON {
	out := DocumentJSON{
		Root:       d.Root.Name,
		Attributes: make(map[string]string, len(d.Root.Attrs)),
		Categories: make([]CategoryJSON, 0, len(d.Categories)),
	}
	for _, a := range d.Root.Attrs {
		out.Attributes[a.Name] = a.Value
	}
	for _, c := range d.Categories {
		cj := CategoryJSON{Name: attrPtr(c.Name), Features: make([]FeatureJSON, 0, len(c.Features))}
		for _, f := range c.Features {
			cj.Features = append(cj.Features, featureJSON(f))
		}
		out.Categories = append(out.Categories, cj)
	}
	return out
}

func featureJSON(f *Feature) FeatureJSON {
	fj := FeatureJSON{
		ID:       attrPtr(f.ID),
		Status:   attrPtr(f.Status),
		Priority: attrPtr(f.Priority),
	}
	if f.Description != nil {
		fj.Description = &f.Description.Text
	}
	if f.Steps != nil {
		fj.Steps = make([]string, 0, len(f.Steps.Items))
		for _, s := range f.Steps.Items {
			fj.Steps = append(fj.Steps, s.Text)
		}
	}
	if f.Notes != nil {
		fj.Notes = &f.Notes.Text
	}
	return fj
}

func attrPtr(a Attr) *string {
	if !a.Present {
		return nil
	}
	v := a.Value
	return &v
}
