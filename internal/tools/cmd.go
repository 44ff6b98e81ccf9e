package tools

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/baalimago/searchchat/internal/utils"
)

// SubCmd handles 'searchchat tools [tool-name]'. args[0] is the subcommand
// itself. Without a tool name every tool is listed, one per row, otherwise the
// specification of the named tool is printed as json.
func SubCmd(w io.Writer, r *Registry, args []string) error {
	if len(args) > 1 {
		return printSpec(w, r, args[1])
	}

	fmt.Fprintln(w, "Available Tools:")
	for _, name := range r.Names() {
		t, _ := r.Get(name)
		row, err := utils.FitToTermWidth(fmt.Sprintf("- %s: ", name), t.Specification().Description, utils.ThemePrimaryColor(), utils.ThemeSecondaryColor(), 5)
		if err != nil {
			return fmt.Errorf("failed to fit description: %w", err)
		}
		fmt.Fprintln(w, row)
	}
	fmt.Fprintln(w, "\nRun 'searchchat tools <tool-name>' for more details.")
	return utils.ErrUserInitiatedExit
}

func printSpec(w io.Writer, r *Registry, name string) error {
	t, exists := r.Get(name)
	if !exists {
		return fmt.Errorf("tool '%s' not found, try one of: %v", name, r.Names())
	}
	b, err := json.MarshalIndent(t.Specification(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tool specification: %w", err)
	}
	fmt.Fprintf(w, "%s\n", b)
	return utils.ErrUserInitiatedExit
}
