package ui

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DrawBanner prints the startup panel: who is logged in, which model is
// active, how many tools are registered, and where the session lives.
func (u *UI) DrawBanner(version, modelName string, toolCount int) {
	accent := lipgloss.Color("#4FA3D1")

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(64)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7D7D")).
		MarginLeft(2)

	currentUser, _ := user.Current()
	username := "there"
	if currentUser != nil {
		if currentUser.Name != "" {
			names := strings.Fields(currentUser.Name)
			if len(names) > 0 {
				username = names[0]
			}
		} else {
			username = currentUser.Username
		}
	}

	cwd, _ := os.Getwd()
	if len(cwd) > 40 {
		cwd = "~/.../" + filepath.Base(cwd)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Render(fmt.Sprintf("Welcome back, %s!", username))

	info := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7D7D")).
		Render(fmt.Sprintf("%s • %d tools\n%s", modelName, toolCount, cwd))

	hints := lipgloss.NewStyle().
		Foreground(accent).
		MarginTop(1).
		Render("Type / for commands, exit to quit")

	content := lipgloss.JoinVertical(lipgloss.Left, header, info, hints)

	fmt.Println(titleStyle.Render("TwinCLI " + version))
	fmt.Println(borderStyle.Render(content))
}
