package utils

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/baalimago/searchchat/internal/models"
)

// AttemptPrettyPrint by first checking if the glow command is available, and if so, pretty print the chat message
// if not found, simply print the message as is
func AttemptPrettyPrint(w io.Writer, chatMessage models.Message, username string, raw bool) error {
	if raw {
		fmt.Fprintln(w, chatMessage.Content)
		return nil
	}
	role := chatMessage.Role
	if role == "user" {
		role = username
	}
	label := Colorize(RoleColor(chatMessage.Role), role)
	if _, err := exec.LookPath("glow"); err != nil {
		fmt.Fprintf(w, "%v: %v\n", label, chatMessage.Content)
		return nil
	}

	cmd := exec.Command("glow")
	cmd.Stdin = bytes.NewBufferString(strings.TrimSpace(chatMessage.Content))
	cmd.Stdout = w
	fmt.Fprintf(w, "%v:", label)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run glow: %w", err)
	}
	return nil
}
