// File: cmd/redact.go
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"ctxpack/pkg/redact"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// redactCmd rewrites secrets under ROOT, or writes a redacted copy with --mirror-out.
var redactCmd = &cobra.Command{
	Use:   "redact ROOT",
	Short: "Redact secret-looking values in a project",
	Long: `Redact replaces secret-looking values in text files under ROOT with
<REDACTED:rule> placeholders. Without --mirror-out files are rewritten in place;
with it a redacted copy is written to an empty directory and ROOT is untouched.
Matching is pattern based and may miss secrets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mirror, err := cmd.Flags().GetString("mirror-out")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		r := redact.New()
		out := cmd.OutOrStdout()
		if mirror != "" {
			res, err := r.Mirror(args[0], mirror, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Mirror written to %s: %d redacted, %d copied unchanged\n", mirror, len(res.Changed), res.Copied)
			printFindings(out, res.Findings)
			return nil
		}

		if !yes && stdinIsTerminal() {
			ok, err := promptUser(cmd.InOrStdin(), out, fmt.Sprintf("Redact files under %s in place? (y/n): ", args[0]))
			if err != nil {
				return fmt.Errorf("failed to read user input: %w", err)
			}
			if !ok {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		res, err := r.InPlace(args[0], logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Scanned %d files, redacted %d\n", res.Scanned, len(res.Changed))
		printFindings(out, res.Findings)
		return nil
	},
}

func printFindings(w io.Writer, f redact.Findings) {
	for _, name := range f.Names() {
		fmt.Fprintf(w, "  %s: %d\n", name, f[name])
	}
}

// promptUser displays a message and waits for the user to enter 'y' or 'n'.
// Returns true if the user enters 'y' or 'yes' (case-insensitive), false otherwise.
func promptUser(in io.Reader, out io.Writer, message string) (bool, error) {
	fmt.Fprint(out, message)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func init() {
	redactCmd.Flags().String("mirror-out", "", "Write a redacted copy to this empty directory instead of editing in place")
	redactCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt for in-place redaction")
	RootCmd.AddCommand(redactCmd)
}
