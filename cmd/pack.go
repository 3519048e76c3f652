// File: cmd/pack.go
package cmd

import (
	"fmt"
	"io"

	"ctxpack/pkg/config"
	"ctxpack/pkg/pack"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// packCmd builds <out-parent>/<project>_context/ from a project root.
var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack a project into Markdown chunks",
	Long: `Pack walks --root, writes project_context.md, numbered chunk files no larger than
--max-bytes, manifest.json and a zip archive into <out-parent>/<project>_context/.
The previous output directory is replaced only when the new one is complete.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		summary, err := pack.Run(cfg, logger)
		if err != nil {
			return err
		}
		printPackSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

func printPackSummary(w io.Writer, s pack.Summary) {
	m := s.Manifest
	fmt.Fprintf(w, "Wrote: %s (%s)\n", s.Output.Document, humanize.Bytes(uint64(m.TotalBytes)))
	fmt.Fprintf(w, "Files: %d included, %d excluded, %d binary, %d truncated, %d skipped\n",
		m.NumFilesIncluded, m.NumFilesExcluded, m.NumFilesBinary, m.NumFilesTruncated, len(m.Skipped))
	fmt.Fprintf(w, "Chunks: %d (max %s each)\n", m.NumChunks, humanize.Bytes(uint64(m.Config.MaxBytes)))
	if len(m.Redaction) > 0 {
		total := 0
		for _, n := range m.Redaction {
			total += n
		}
		fmt.Fprintf(w, "Redacted: %d values\n", total)
	}
	fmt.Fprintf(w, "Manifest: %s\n", s.Output.Manifest)
	fmt.Fprintf(w, "Archive: %s\n", s.Output.Archive)
}

func init() {
	config.RegisterFlags(packCmd.Flags())
	_ = packCmd.MarkFlagRequired(config.FlagRoot)
	RootCmd.AddCommand(packCmd)
}
