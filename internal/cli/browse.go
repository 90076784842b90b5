package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pangolin/pkg/icon"
)

// browseCommand creates the interactive gallery command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		manifest string
		prefix   string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and filter icons interactively",
		Long: `Browse lists every icon and filters the list as you type. Tab switches
between matching tags and matching ids; enter prints the selected icon's
markup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.loadRegistry(cmd.Context(), cfg, manifest)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewBrowseModel(reg), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if m, ok := final.(BrowseModel); ok && m.Selected != nil {
				markup := icon.RenderToText(*m.Selected, nil, icon.WithPrefix(prefixOr(prefix, cfg.Prefix)))
				fmt.Fprintln(cmd.OutOrStdout(), markup)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "icons.json to browse (default: <output>/icons.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "class prefix for the printed markup (default from config)")

	return cmd
}

// =============================================================================
// BrowseModel - Interactive icon gallery
// =============================================================================

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	browseModeStyle     = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// BrowseModel is the bubbletea model for the icon gallery.
type BrowseModel struct {
	Registry  *icon.Registry
	Query     string
	MatchTags bool
	Results   []icon.Record
	Cursor    int
	Offset    int
	Height    int
	Selected  *icon.Record
}

// NewBrowseModel creates a gallery over reg, listing every icon.
func NewBrowseModel(reg *icon.Registry) BrowseModel {
	m := BrowseModel{Registry: reg, MatchTags: true, Height: 15}
	m.filter()
	return m
}

// filter recomputes Results for the current query and mode.
func (m *BrowseModel) filter() {
	if m.Query == "" {
		m.Results = m.Registry.Records()
	} else {
		m.Results = m.Registry.Search(m.Query, icon.SearchOptions{
			MatchTags:  m.MatchTags,
			MatchTitle: !m.MatchTags,
		})
	}
	m.Cursor, m.Offset = 0, 0
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.MatchTags = !m.MatchTags
			m.filter()
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Results) == 0 {
				return m, nil
			}
			rec := m.Results[m.Cursor]
			m.Selected = &rec
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Query != "" {
				r := []rune(m.Query)
				m.Query = string(r[:len(r)-1])
				m.filter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.Query += string(msg.Runes)
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	mode := "tags"
	if !m.MatchTags {
		mode = "ids"
	}

	b.WriteString(StyleTitle.Render("Pangolin Icons"))
	b.WriteString("  ")
	b.WriteString(browseModeStyle.Render("[" + mode + "]"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("type to filter  tab: tags/ids  ↑/↓ navigate  ⏎ print  esc quit"))
	b.WriteString("\n\n")
	b.WriteString("› " + m.Query + "▏\n\n")

	if len(m.Results) == 0 {
		b.WriteString(browseDimStyle.Render("  no icons match"))
		b.WriteString("\n")
	}

	end := min(m.Offset+m.Height, len(m.Results))
	for i := m.Offset; i < end; i++ {
		rec := m.Results[i]
		line := fmt.Sprintf("%-28s %s", rec.ID, browseDimStyle.Render(formatTags(rec.Tags)))
		if i == m.Cursor {
			b.WriteString(browseSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(browseNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d]", len(m.Results), m.Registry.Len())))
	return b.String()
}
