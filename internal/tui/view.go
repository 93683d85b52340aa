package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/gallery"
)

func (m *Model) View() string {
	snap := m.app.Store.Snapshot()

	sections := []string{m.renderHeader(snap)}

	if m.inModal() {
		sections = append(sections, m.renderModal())
	} else {
		sections = append(sections, m.renderGrid(snap), m.renderStatus(snap))
	}

	switch m.state {
	case stateInput:
		sections = append(sections, m.input.View())
	case stateConfirmDelete:
		sections = append(sections, styles.WarningStyle.Render(
			fmt.Sprintf("Delete %d image(s)? (y/n)", snap.Selection.Len())))
	}

	if m.inModal() {
		sections = append(sections, styles.HelpStyle.Render(m.help.View(modalHelp{m.keys})))
	} else {
		sections = append(sections, styles.HelpStyle.Render(m.help.View(gridHelp{m.keys})))
	}

	if toasts := m.toasts.View(); toasts != "" {
		sections = append(sections, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// inModal reports whether the viewer is shown, including while typing into
// one of its prompts.
func (m *Model) inModal() bool {
	return m.state == stateModal || (m.state == stateInput && m.returnTo == stateModal)
}

func (m *Model) renderHeader(snap gallery.State) string {
	tabs := make([]string, 0, len(image.Modes))
	for _, mode := range image.Modes {
		if mode == m.mode {
			tabs = append(tabs, styles.TabActiveStyle.Render(string(mode)))
			continue
		}
		tabs = append(tabs, styles.TabStyle.Render(string(mode)))
	}

	header := styles.HeaderStyle.Render("lightbox") + " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if user := m.app.Directory.UserName(); user != "" {
		header += " " + styles.MutedStyle.Render("@"+user)
	}
	if m.pending > 0 || snap.Loading {
		header += " " + m.spinner.View()
	}
	if snap.Filter != "" {
		header += "\n" + styles.MutedStyle.Render("filter: ") + styles.TagStyle.Render(snap.Filter)
	}
	return header
}

func (m *Model) renderGrid(snap gallery.State) string {
	if len(snap.Images) == 0 {
		if snap.Loading {
			return styles.LoadingStyle.Render("Loading…")
		}
		return styles.MutedStyle.Render("No images")
	}

	user := m.app.Directory.UserName()
	rows := make([]string, 0, len(snap.Images))
	for i, r := range snap.Images {
		var b strings.Builder

		if snap.GroupSelect {
			if r.IsSelected {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		}

		b.WriteString(displayTitle(r))
		if len(r.Info.Tags) > 0 {
			b.WriteString(" " + styles.TagStyle.Render("#"+strings.Join(r.Info.Tags, " #")))
		}

		likes := fmt.Sprintf("♡ %d", len(r.Info.Likes))
		if r.Info.IsLikedBy(user) {
			likes = fmt.Sprintf("♥ %d", len(r.Info.Likes))
		}
		b.WriteString(" " + styles.MutedStyle.Render(likes))
		if r.Info.IsLoading {
			b.WriteString(" " + m.spinner.View())
		}

		row := b.String()
		switch {
		case i == m.cursor:
			row = styles.CursorStyle.Render("> " + row)
		case r.IsSelected:
			row = styles.SelectedStyle.Render("  " + row)
		default:
			row = styles.NormalStyle.Render("  " + row)
		}
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n")
}

func (m *Model) renderStatus(snap gallery.State) string {
	pg := snap.Pagination
	page := uint(0)
	if pg.TotalPages() > 0 {
		page = pg.Page + 1
	}

	status := fmt.Sprintf("page %d/%d · %d images · %d per page", page, pg.TotalPages(), pg.Total, pg.PageSize)
	if snap.GroupSelect {
		status += fmt.Sprintf(" · %d selected", snap.Selection.Len())
	}
	return styles.StatusStyle.Render(status)
}

func (m *Model) renderModal() string {
	nav := m.app.Navigator
	rec, ok := nav.Current()
	if !ok {
		return styles.ModalStyle.Render(styles.LoadingStyle.Render("Loading…"))
	}

	var b strings.Builder
	title := displayTitle(rec)
	if nav.Index() >= 0 {
		title += styles.MutedStyle.Render(fmt.Sprintf("  %d/%d", nav.Index()+1, nav.Len()))
	}
	if nav.Phase() == gallery.PhaseLoading {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.ModalTitleStyle.Render(title) + "\n")

	field := func(label, value string) {
		b.WriteString(styles.MutedStyle.Render(label+": ") + value + "\n")
	}

	if rec.Info.BelongsTo != "" {
		field("owner", rec.Info.BelongsTo)
	}
	tags := "none"
	if len(rec.Info.Tags) > 0 {
		tags = styles.TagStyle.Render(strings.Join(rec.Info.Tags, ", "))
	}
	field("tags", tags)

	likes := fmt.Sprintf("%d", len(rec.Info.Likes))
	if rec.Info.IsLikedBy(m.app.Directory.UserName()) {
		likes += " (you)"
	}
	field("likes", likes)
	field("public", yesNo(rec.Info.IsPublic))
	field("link", yesNo(rec.Info.SharedByLink))
	if rec.Info.SharedByLink {
		field("share", styles.LinkStyle.Render(m.app.Share.ShareLink(rec.ID)))
	}
	if len(rec.Info.OpenedTo) > 0 {
		field("shared with", strings.Join(rec.Info.OpenedTo, ", "))
	}
	if rec.URL != "" {
		field("url", styles.LinkStyle.Render(rec.URL))
	}
	if d := strings.TrimSpace(rec.Info.Description); d != "" {
		b.WriteString("\n" + d + "\n")
	}

	arrows := []string{"◀", "▶"}
	if nav.IsFirst() {
		arrows[0] = " "
	}
	if nav.IsLast() {
		arrows[1] = " "
	}
	b.WriteString(styles.MutedStyle.Render(arrows[0] + "  " + arrows[1]))

	style := styles.ModalStyle
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(b.String())
}

func displayTitle(r image.Record) string {
	if r.Info.Title != "" {
		return r.Info.Title
	}
	return r.ID
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
