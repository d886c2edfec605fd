package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/penwyp/UsagePivot/config"
)

var versionOutput string

// Build details set by the linker
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := VersionInfo{
			Version:   config.Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
		}

		w := cmd.OutOrStdout()
		switch versionOutput {
		case "json":
			return outputVersionJSON(w, info)
		case "short":
			_, err := fmt.Fprintln(w, info.Version)
			return err
		case "", "default":
			return outputVersionDefault(w, info)
		}
		return fmt.Errorf("unsupported output format: %s", versionOutput)
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "default", "output format (default, json, short)")

	rootCmd.AddCommand(versionCmd)
}

func outputVersionDefault(w io.Writer, info VersionInfo) error {
	fmt.Fprintf(w, "UsagePivot - license usage pivot and concurrency report\n")
	fmt.Fprintf(w, "Version:     %s\n", info.Version)
	if info.GitCommit != "unknown" {
		fmt.Fprintf(w, "Git Commit:  %s\n", info.GitCommit)
	}
	if info.BuildTime != "unknown" {
		fmt.Fprintf(w, "Build Time:  %s\n", info.BuildTime)
	}
	fmt.Fprintf(w, "Go Version:  %s\n", info.GoVersion)
	_, err := fmt.Fprintf(w, "OS/Arch:     %s/%s\n", info.OS, info.Arch)
	return err
}

func outputVersionJSON(w io.Writer, info VersionInfo) error {
	data, err := sonic.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
