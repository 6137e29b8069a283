package tui

import (
	"fmt"
	"strings"

	"github.com/iksnae/anybot/internal"
)

// renderSidebar lists the screens and the bots known to this session
func renderSidebar(store *internal.Store, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("anybot") + "\n\n")

	for i, v := range internal.Views {
		label := fmt.Sprintf("F%d %s", i+1, v.Label())
		if v == store.ActiveView() {
			b.WriteString(activeItemStyle.Render("▸ " + label))
		} else {
			b.WriteString(itemStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + mutedStyle.Render("Bots") + "\n")
	bots := store.Bots()
	if len(bots) == 0 {
		b.WriteString(mutedStyle.Render("  none yet") + "\n")
	}
	active, hasActive := store.ActiveBot()
	for _, bot := range bots {
		name := truncate(bot.Name, sidebarWidth-6)
		if hasActive && bot.ID == active.ID {
			b.WriteString(activeItemStyle.Render("● "+name) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+name) + "\n")
		}
	}
	if len(bots) > 1 {
		b.WriteString(helpStyle.Render("\nctrl+n/ctrl+p switch bot") + "\n")
	}

	style := sidebarStyle
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(b.String())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
