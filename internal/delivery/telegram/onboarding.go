package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

func welcomeMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("👋 Welcome to Lingo Spark!"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Every day I build a fresh English lesson just for you, in about five minutes:"))
	sb.WriteString("\n")
	for _, spec := range entities.Steps() {
		sb.WriteString(md(fmt.Sprintf("%d. %s", int(spec.Step)+1, spec.Title)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(md("Pick your level and vibe below, optionally send me a topic, and tap Start lesson."))

	return sb.String()
}

func helpMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("ℹ️ How it works"))
	sb.WriteString("\n\n")
	for _, c := range botCommands {
		sb.WriteString(md(fmt.Sprintf("/%s  %s", c.Command, c.Description)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(md("On the dashboard any text becomes your topic. During the roleplay, just write to your partner."))
	sb.WriteString("\n")
	sb.WriteString(md("Each new lesson earns XP and adds a day to your streak."))

	return sb.String()
}
