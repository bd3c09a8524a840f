package tui

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmRestore
	confirmImport
)

// confirmModel is the yes/no overlay shown before the two destructive
// actions, restore and import.
type confirmModel struct {
	kind    confirmKind
	message string
	warning string
}

func (m confirmModel) View() string {
	content := m.message + "\n"
	if m.warning != "" {
		content += errorStyle.Render(m.warning) + "\n"
	}
	content += "\ny: yes    n/esc: no"
	return overlayBoxStyle.Render(content)
}
