// Package catalog holds the circles of every page and the table that maps a
// circle's display name to the backend identifier.
package catalog

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sp-meter/circles/internal/config"
)

var (
	// ErrUnknownUnit means a display name has no backend identifier.
	ErrUnknownUnit = errors.New("unit not supported by backend")
	// ErrSameUnit means a conversion from a unit to itself was requested.
	ErrSameUnit = errors.New("cannot convert a unit to itself")
	// ErrInvalidNumber means the entered value does not start with a number.
	ErrInvalidNumber = errors.New("value is not a number")
	// ErrUnknownPage means no page has the requested id.
	ErrUnknownPage = errors.New("unknown page")
)

// Unit is one circle: the symbol drawn inside it, the name printed next to
// it and the backend identifier (empty when unsupported).
type Unit struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
}

// Supported reports whether the backend knows this unit.
func (u Unit) Supported() bool { return u.ID != "" }

// Messages are the fixed strings a page renders for non-success outcomes.
type Messages = config.MessagesConfig

// Page is the immutable description of one conversion page.
type Page struct {
	ID                 string
	Kind               config.PageKind
	Title              string
	BaseURL            string
	PathPrefix         string
	Detail             config.DetailField
	ValidateNumeric    bool
	IncludeErrorDetail bool
	NavigateTo         string
	NavigateLabel      string
	Messages           Messages

	units   []Unit
	byLabel map[string]int
	ids     map[string]string
}

// NewPage builds a Page from its configuration.
func NewPage(pc config.PageConfig) (*Page, error) {
	p := &Page{
		ID:                 pc.ID,
		Kind:               pc.Kind,
		Title:              pc.Title,
		BaseURL:            strings.TrimRight(pc.BaseURL, "/"),
		PathPrefix:         strings.TrimRight(pc.PathPrefix, "/"),
		Detail:             pc.Detail,
		ValidateNumeric:    pc.ValidateNumeric,
		IncludeErrorDetail: pc.IncludeErrorDetail,
		NavigateTo:         pc.NavigateTo,
		NavigateLabel:      pc.NavigateLabel,
		Messages:           pc.Messages,
		byLabel:            make(map[string]int, len(pc.Units)),
		ids:                make(map[string]string, len(pc.Units)),
	}

	for _, uc := range pc.Units {
		u := Unit{
			Label: strings.TrimSpace(uc.Label),
			Name:  strings.TrimSpace(uc.Name),
			ID:    strings.TrimSpace(uc.ID),
		}
		if u.Label == "" {
			return nil, errors.Newf("page %s: unit %q has no label", pc.ID, uc.Name)
		}
		if _, dup := p.byLabel[u.Label]; dup {
			return nil, errors.Newf("page %s: duplicate label %q", pc.ID, u.Label)
		}
		p.byLabel[u.Label] = len(p.units)
		p.units = append(p.units, u)
		if u.ID != "" {
			p.ids[u.Name] = u.ID
		}
	}
	return p, nil
}

// Units returns the page's circles in display order.
func (p *Page) Units() []Unit {
	return append([]Unit(nil), p.units...)
}

// Unit returns the circle with the given label.
func (p *Page) Unit(label string) (Unit, bool) {
	i, ok := p.byLabel[strings.TrimSpace(label)]
	if !ok {
		return Unit{}, false
	}
	return p.units[i], true
}

// UnitByName returns the circle with the given display name.
func (p *Page) UnitByName(name string) (Unit, bool) {
	name = strings.TrimSpace(name)
	for _, u := range p.units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// IDFor maps a display name to its backend identifier.
func (p *Page) IDFor(name string) (string, bool) {
	id, ok := p.ids[strings.TrimSpace(name)]
	return id, ok
}

// Resolve maps both display names of a conversion to backend identifiers.
func (p *Page) Resolve(fromName, toName string) (fromID, toID string, err error) {
	fromID, ok := p.IDFor(fromName)
	if !ok {
		return "", "", errors.Wrapf(ErrUnknownUnit, "%s", fromName)
	}
	toID, ok = p.IDFor(toName)
	if !ok {
		return "", "", errors.Wrapf(ErrUnknownUnit, "%s", toName)
	}
	return fromID, toID, nil
}

// PrepareValue returns the value to send to the backend. Pages that
// validate numbers parse the raw input the way a browser's parseFloat does
// and send the parsed number; other pages send the raw string untouched.
func (p *Page) PrepareValue(raw string) (string, error) {
	if !p.ValidateNumeric {
		return raw, nil
	}
	f, ok := ParseLeadingFloat(raw)
	if !ok {
		return "", errors.Wrapf(ErrInvalidNumber, "%q", raw)
	}
	return FormatNumber(f), nil
}

// Catalog is the set of configured pages.
type Catalog struct {
	pages []*Page
	byID  map[string]*Page
}

// New builds a Catalog from page configurations.
func New(pcs []config.PageConfig) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Page, len(pcs))}
	for _, pc := range pcs {
		p, err := NewPage(pc)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Newf("duplicate page id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.pages = append(c.pages, p)
	}
	return c, nil
}

// Page returns the page with the given id.
func (c *Catalog) Page(id string) (*Page, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPage, "%q", id)
	}
	return p, nil
}

// Pages returns all pages in configuration order.
func (c *Catalog) Pages() []*Page {
	return append([]*Page(nil), c.pages...)
}
