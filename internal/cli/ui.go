package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/internal/storage"
)

// UI styles
var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Align(lipgloss.Center).
			Width(70).
			MarginBottom(1)

	historyStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(1, 2).
			Width(78)

	turnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// DisplayWelcomeBanner shows the welcome banner with the configured rotation.
func DisplayWelcomeBanner(participants []string) {
	banner := fmt.Sprintf(`🤖 Model Control Protocol v%s

Sequential message exchange between simulated models,
logged to a local SQLite database.

Rotation: %s`, version, strings.Join(participants, " → "))

	fmt.Println(bannerStyle.Render(banner))
}

// DisplayTurn prints one freshly produced message.
func DisplayTurn(msg *storage.Message) {
	if msg == nil {
		return
	}
	line := fmt.Sprintf("💬 %s: %s", msg.ModelID, truncateString(msg.Content, 120))
	fmt.Println(turnStyle.Render(line))
}

// DisplayHistory renders the full conversation log, oldest first.
func DisplayHistory(history []storage.Exchange) {
	var content strings.Builder

	content.WriteString("📜 Message History\n\n")

	if len(history) == 0 {
		content.WriteString("No messages found in the database.")
		fmt.Println(historyStyle.Render(content.String()))
		return
	}

	for _, ex := range history {
		line := fmt.Sprintf("[%s] %s -> %s: %s",
			ex.Message.Timestamp.Format("2006-01-02 15:04:05"),
			ex.Interaction.SenderID,
			ex.Interaction.ReceiverID,
			truncateString(ex.Message.Content, 60),
		)
		content.WriteString(line + "\n")
	}
	content.WriteString(fmt.Sprintf("\n%d message(s) recorded", len(history)))

	fmt.Println(historyStyle.Render(content.String()))
}

// DisplayError shows an error message
func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error: %s", err.Error())))
}

// DisplayInfo shows an info message
func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render(fmt.Sprintf("ℹ️  %s", message)))
}

// DisplaySuccess shows a success message
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ %s", message)))
}

// truncateString shortens s to maxLen runes, never splitting a multibyte
// character.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
