package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"exifizer/internal/app"
	"exifizer/internal/config"
	"exifizer/internal/film"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const version = "0.3.0"

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, _, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	a, err := app.New(cmd.Context(), cfg, app.Options{Verbose: verbose, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "exifizer",
	Short: "Write film roll metadata into scanned images",
	Long: `exifizer reads a roll manifest and writes camera, film stock, ISO and
synthetic capture times into every scan of the roll using exiftool.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()
	},
}

// apply and plan commands

// applyRequest builds the request shared by apply and plan from their flags.
func applyRequest(cmd *cobra.Command, args []string) (film.ApplyRequest, error) {
	recursive, _ := cmd.Flags().GetBool("recursive")
	manifest, _ := cmd.Flags().GetString("manifest")
	filmManifest, _ := cmd.Flags().GetString("film-manifest")
	imagesDir, _ := cmd.Flags().GetString("images-dir")

	if len(args) > 0 {
		if imagesDir != "" && imagesDir != args[0] {
			return film.ApplyRequest{}, fmt.Errorf("give the images directory either as an argument or with --images-dir")
		}
		imagesDir = args[0]
	}
	if imagesDir == "" {
		if filmManifest != "" {
			return film.ApplyRequest{}, fmt.Errorf("--film-manifest requires --images-dir")
		}
		imagesDir = "."
	}
	if filmManifest != "" && (recursive || manifest != "") {
		return film.ApplyRequest{}, fmt.Errorf("--film-manifest cannot be combined with --recursive or --manifest")
	}

	return film.ApplyRequest{
		ImagesDir:    imagesDir,
		Recursive:    recursive,
		ManifestPath: manifest,
		FilmManifest: filmManifest,
	}, nil
}

var applyCmd = &cobra.Command{
	Use:   "apply [DIR]",
	Short: "Write roll metadata into scans",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := applyRequest(cmd, args)
		if err != nil {
			return err
		}
		reportPath, _ := cmd.Flags().GetString("report")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Apply(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := summary.WriteText(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("printing summary: %w", err)
		}
		if reportPath != "" {
			if err := app.WriteReport(reportPath, summary); err != nil {
				return err
			}
		}
		return summary.Err()
	},
}

var planCmd = &cobra.Command{
	Use:   "plan [DIR]",
	Short: "Print the metadata apply would write, without writing it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := applyRequest(cmd, args)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Plan(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := app.WritePlans(cmd.OutOrStdout(), summary.Plans()); err != nil {
			return err
		}
		if err := summary.WriteText(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("printing summary: %w", err)
		}
		return summary.Err()
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View apply run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No apply runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Fprintf(out, "%s  %-13s  %s  %-11s  %3d ok  %3d failed  %-8s  %s\n",
				shortID(r.ID),
				r.Mode,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Succeeded,
				r.Failed,
				duration,
				r.Source,
			)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// log command
var logCmd = &cobra.Command{
	Use:   "log FILENAME",
	Short: "View the apply history of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.GetFileLog(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No apply history.")
			return nil
		}

		for _, r := range results {
			detail := r.DateTimeOriginal
			if r.Status == film.FileFailed {
				detail = fmt.Sprintf("%s: %s", r.ErrorKind, r.Message)
			}
			archived := ""
			if r.ArchiveChecksum != "" {
				archived = "  original:" + r.ArchiveChecksum[:12]
				if r.ArchiveEncrypted {
					archived += " (encrypted)"
				}
			}
			fmt.Fprintf(out, "%s  %s  roll %d #%d  %-8s  %s%s\n",
				shortID(r.RunID),
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.RollNumber,
				r.PhotoNumber,
				r.Status,
				detail,
				archived,
			)
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore FILENAME",
	Short: "Restore the archived original of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inPlace, _ := cmd.Flags().GetBool("in-place")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var passphrase string
		if a.ArchiveEncrypted() {
			passphrase, err = readPassphrase(cmd, "Passphrase: ")
			if err != nil {
				return err
			}
		}

		out, err := a.Restore(args[0], inPlace, passphrase)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored original to %s\n", out)
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := app.DefaultConfig(defaults)
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(out, "Base Dir: %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "ExifTool config: %s\n", cfg.ExifTool.ConfigPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := app.LoadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# Configuration from %s\n\n", path)
		m := &config.Manager{}
		return m.Write(out, cfg)
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the archive key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := app.LoadConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase(cmd, "New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase(cmd, "Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return errors.New("passphrases do not match")
		}

		if err := app.InitKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Public key:  %s\nPrivate key: %s\n",
			cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// readPassphrase prompts on stderr and reads without echo from a terminal,
// or reads one line when stdin is not a terminal.
func readPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug detail to stderr")

	for _, c := range []*cobra.Command{applyCmd, planCmd} {
		c.Flags().BoolP("recursive", "r", false, "Treat every directory with images below DIR as a roll")
		c.Flags().String("manifest", "", "Manifest to use instead of DIR/exif.txt")
		c.Flags().String("film-manifest", "", "Markdown manifest describing many rolls")
		c.Flags().String("images-dir", "", "Base directory of the rolls named by --film-manifest")
	}
	applyCmd.Flags().String("report", "", "Write the run summary as YAML to this file")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	restoreCmd.Flags().Bool("in-place", false, "Replace the scan instead of writing FILENAME.<checksum>.original")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
}
