// Package render turns backend responses and fixed messages into the HTML
// fragments placed in a page's explanation and result regions.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
)

const (
	missingField = "-"
	missingDesc  = "설명 없음"
)

var detailLabels = map[config.DetailField]string{
	config.DetailMagnification: "배율",
	config.DetailDimension:     "차원",
}

var templates = template.Must(template.New("explanation").Parse(explanationTemplate))

func init() {
	template.Must(templates.New("result_prefix").Parse(prefixResultTemplate))
	template.Must(templates.New("result_unit").Parse(unitResultTemplate))
	template.Must(templates.New("message").Parse(messageTemplate))
}

// Renderer renders fragments for one page.
type Renderer struct {
	page *catalog.Page
	md   goldmark.Markdown
}

// New creates a Renderer for page.
func New(page *catalog.Page) *Renderer {
	return &Renderer{
		page: page,
		md: goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

type explanationData struct {
	Name        string
	Symbol      string
	DetailLabel string
	Detail      string
	Desc        template.HTML
}

// Explanation renders a unit description.
func (r *Renderer) Explanation(info *backend.UnitInfo) (string, error) {
	detail := info.Magnification
	if r.page.Detail == config.DetailDimension {
		detail = info.Dimension
	}

	desc, err := r.markdown(info.Desc.String())
	if err != nil {
		return "", err
	}

	return execute("explanation", explanationData{
		Name:        info.Name.String(),
		Symbol:      orDash(info.Symbol.String()),
		DetailLabel: detailLabels[r.page.Detail],
		Detail:      orDash(detail.String()),
		Desc:        desc,
	})
}

type resultData struct {
	From    string
	To      string
	Result  string
	Formula string
}

// Result renders a conversion outcome between two display names.
func (r *Renderer) Result(fromName, toName string, conv *backend.Conversion) (string, error) {
	name := "result_prefix"
	if r.page.Kind == config.PageKindUnit {
		name = "result_unit"
	}
	return execute(name, resultData{
		From:    strings.TrimSpace(fromName),
		To:      strings.TrimSpace(toName),
		Result:  conv.Result.String(),
		Formula: conv.Formula.String(),
	})
}

// Message renders a fixed informational string.
func (r *Renderer) Message(text string) string {
	out, err := execute("message", text)
	if err != nil {
		// The message template only escapes a string.
		return template.HTMLEscapeString(text)
	}
	return out
}

// NoDescription is shown when a committed unit has no backend identifier.
func (r *Renderer) NoDescription() string {
	return r.Message(r.page.Messages.NoDescription)
}

// DescriptionUnavailable is shown when the info request fails.
func (r *Renderer) DescriptionUnavailable() string {
	return r.Message(r.page.Messages.DescriptionUnavailable)
}

// NoConversion is shown when either unit has no backend identifier.
func (r *Renderer) NoConversion() string {
	return r.Message(r.page.Messages.NoConversion)
}

// InvalidNumber is shown when a validating page gets a non-numeric value.
func (r *Renderer) InvalidNumber() string {
	return r.Message(r.page.Messages.InvalidNumber)
}

// ConversionFailed is shown when the conversion request fails. Pages that
// include error detail append the error text; a backend response body is
// left out.
func (r *Renderer) ConversionFailed(err error) string {
	msg := r.page.Messages.ConversionFailed
	if r.page.IncludeErrorDetail && err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) {
			msg += ": " + se.Summary()
		} else {
			msg += ": " + err.Error()
		}
	}
	return r.Message(msg)
}

func (r *Renderer) markdown(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return template.HTML(template.HTMLEscapeString(missingDesc)), nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "rendering description")
	}
	// goldmark drops raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "executing %s template", name)
	}
	return buf.String(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingField
	}
	return s
}
