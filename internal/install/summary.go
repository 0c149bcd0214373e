package install

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/messages"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)
)

// Summary renders the post-install banner. plain drops the box and colors for
// output that is not a terminal.
func Summary(target config.Target, plain bool) string {
	lines := []string{
		fmt.Sprintf(messages.InstallDoneLaunchFmt, target.LauncherPath),
		fmt.Sprintf(messages.InstallDoneRemoveFmt, target.RemoverPath),
		fmt.Sprintf(messages.InstallDoneLogFmt, target.LogPath),
	}
	if plain {
		return messages.InstallDoneTitle + "\n" + strings.Join(lines, "\n") + "\n"
	}
	body := summaryTitleStyle.Render(messages.InstallDoneTitle) + "\n\n" + strings.Join(lines, "\n")
	return summaryBoxStyle.Render(body) + "\n"
}
