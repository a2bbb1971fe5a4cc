package journal

import "cafelog/internal/model"

// Detail shows one cafe and offers a single action: edit.
type Detail struct {
	cafe      model.Cafe
	onUpdated func(model.Cafe) error
}

// NewDetail displays c. onUpdated receives every update made through Edit.
func NewDetail(c model.Cafe, onUpdated func(model.Cafe) error) *Detail {
	return &Detail{cafe: c.Clone(), onUpdated: onUpdated}
}

// Cafe returns the displayed record.
func (d *Detail) Cafe() model.Cafe { return d.cafe.Clone() }

// Edit opens an edit form on the displayed record.
func (d *Detail) Edit() *Form {
	return NewEditForm(d.cafe, FormCallbacks{OnUpdated: d.updated})
}

// updated passes the record upward and, once accepted, displays it.
func (d *Detail) updated(c model.Cafe) error {
	if d.onUpdated != nil {
		if err := d.onUpdated(c); err != nil {
			return err
		}
	}
	d.cafe = c.Clone()
	return nil
}
