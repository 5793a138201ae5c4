package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
	"github.com/sp-meter/circles/internal/history"
	"github.com/sp-meter/circles/internal/logger"
)

// handleListUnits lists the circles of one or every page.
func (s *Server) handleListUnits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages := s.catalog.Pages()
	if id := request.GetString("page", ""); id != "" {
		p, err := s.catalog.Page(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pages = []*catalog.Page{p}
	}

	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s (%s, %s)\n", p.Title, p.ID, p.Kind)
		for _, u := range p.Units() {
			id := u.ID
			if id == "" {
				id = "unsupported"
			}
			fmt.Fprintf(&sb, "- %s %s: %s\n", u.Label, u.Name, id)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleUnitInfo fetches the description of one unit.
func (s *Server) handleUnitInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("unit")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: unit"), nil
	}

	p, api, err := s.resolvePage(request.GetString("page", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	u, ok := findUnit(p, ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("page %s has no unit %q", p.ID, ref)), nil
	}

	entry := history.Entry{Page: p.ID, Kind: history.KindInfo, FromName: u.Name, FromID: u.ID}
	if !u.Supported() {
		entry.Outcome = history.OutcomeUnmapped
		s.record(entry)
		return mcp.NewToolResultError(p.Messages.NoDescription), nil
	}

	info, err := api.Info(ctx, u.ID)
	if err != nil {
		s.log.Warnw("unit info failed", logger.FieldPage, p.ID, logger.FieldUnit, u.ID, "error", err)
		entry.Outcome, entry.Error = history.OutcomeFailed, err.Error()
		s.record(entry)
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", p.Messages.DescriptionUnavailable, err)), nil
	}

	entry.Outcome, entry.Result = history.OutcomeOK, info.Name.String()
	s.record(entry)
	return mcp.NewToolResultText(formatInfo(p, info)), nil
}

// handleConvertUnits converts a value between two units of a page.
func (s *Server) handleConvertUnits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromRef, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: from"), nil
	}
	toRef, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: to"), nil
	}
	raw, err := request.RequireString("value")
	if err != nil || strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("missing required parameter: value"), nil
	}

	p, api, err := s.resolvePage(request.GetString("page", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, ok := findUnit(p, fromRef)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("page %s has no unit %q", p.ID, fromRef)), nil
	}
	to, ok := findUnit(p, toRef)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("page %s has no unit %q", p.ID, toRef)), nil
	}
	if from.Label == to.Label {
		return mcp.NewToolResultError(catalog.ErrSameUnit.Error()), nil
	}

	value := strings.TrimSpace(raw)
	entry := history.Entry{
		Page:     p.ID,
		Kind:     history.KindConversion,
		FromName: from.Name,
		FromID:   from.ID,
		ToName:   to.Name,
		ToID:     to.ID,
		Value:    value,
	}

	value, err = p.PrepareValue(value)
	if err != nil {
		entry.Outcome = history.OutcomeInvalidNumber
		s.record(entry)
		return mcp.NewToolResultError(p.Messages.InvalidNumber), nil
	}
	if _, _, err := p.Resolve(from.Name, to.Name); err != nil {
		entry.Outcome = history.OutcomeUnmapped
		s.record(entry)
		return mcp.NewToolResultError(p.Messages.NoConversion), nil
	}

	entry.Value = value
	conv, err := api.Convert(ctx, from.ID, to.ID, value)
	if err != nil {
		s.log.Warnw("conversion failed", logger.FieldPage, p.ID, "from", from.ID, "to", to.ID, "error", err)
		entry.Outcome, entry.Error = history.OutcomeFailed, err.Error()
		s.record(entry)
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", p.Messages.ConversionFailed, err)), nil
	}

	entry.Outcome, entry.Result = history.OutcomeOK, conv.Result.String()
	s.record(entry)
	return mcp.NewToolResultText(fmt.Sprintf(
		"%s %s = %s %s\nformula: %s",
		value, from.Name, conv.Result, to.Name, conv.Formula,
	)), nil
}

func (s *Server) resolvePage(id string) (*catalog.Page, backend.API, error) {
	if id == "" {
		id = s.defaultPage
	}
	if id == "" {
		if pages := s.catalog.Pages(); len(pages) > 0 {
			id = pages[0].ID
		}
	}
	p, err := s.catalog.Page(id)
	if err != nil {
		return nil, nil, err
	}
	api, ok := s.apis[p.ID]
	if !ok {
		return nil, nil, errors.Newf("no backend configured for page %s", p.ID)
	}
	return p, api, nil
}

func (s *Server) record(entry history.Entry) {
	if s.recorder == nil {
		return
	}
	entry.SessionID = sessionID
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		s.log.Warnw("recording history failed", "error", err)
	}
}

// findUnit accepts either a circle label or a display name.
func findUnit(p *catalog.Page, ref string) (catalog.Unit, bool) {
	if u, ok := p.Unit(ref); ok {
		return u, true
	}
	return p.UnitByName(ref)
}

func formatInfo(p *catalog.Page, info *backend.UnitInfo) string {
	detailLabel, detail := "magnification", info.Magnification
	if p.Detail == config.DetailDimension {
		detailLabel, detail = "dimension", info.Dimension
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", info.Name)
	fmt.Fprintf(&sb, "- symbol: %s\n", orDash(info.Symbol.String()))
	fmt.Fprintf(&sb, "- %s: %s\n", detailLabel, orDash(detail.String()))
	if desc := strings.TrimSpace(info.Desc.String()); desc != "" {
		sb.WriteString("\n" + desc + "\n")
	}
	return sb.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
