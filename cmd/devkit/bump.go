package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zph/devkit/pkg/config"
	"github.com/zph/devkit/pkg/version"
)

var (
	bumpCurrent   string
	bumpRepoDir   string
	bumpTagPrefix string
	bumpCreateTag bool
	bumpJSON      bool
)

// bumpReport is the machine-readable result emitted with --json.
type bumpReport struct {
	Current    string `json:"current"`
	Next       string `json:"next"`
	Tag        string `json:"tag"`
	TagCreated bool   `json:"tagCreated"`
}

var bumpCmd = &cobra.Command{
	Use:   "bump [major|minor|patch]",
	Short: "Bump a semantic version",
	Long: `Compute the next semantic version and optionally create an annotated
git tag for it.

The current version is read from the latest semver tag in the repository
unless --current is given. The bump part defaults to patch.

Examples:
  # Print the next patch version based on the repo's tags
  devkit bump

  # Bump the minor version and create the tag
  devkit bump minor --tag

  # Bump an explicit version without touching git
  devkit bump major --current 1.4.2
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		partName := "patch"
		if len(args) == 1 {
			partName = args[0]
		}
		part, err := version.ParsePart(partName)
		if err != nil {
			return err
		}

		prefix := bumpTagPrefix
		if prefix == "" {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			prefix = cfg.Version.TagPrefix
		}

		repo := version.NewRepo(bumpRepoDir)

		current := bumpCurrent
		if current == "" {
			current, err = repo.CurrentVersion(prefix)
			if err != nil {
				return fmt.Errorf("failed to determine current version: %w", err)
			}
		}

		next, err := version.Bump(current, part)
		if err != nil {
			return err
		}
		tag := prefix + next

		if bumpCreateTag {
			if err := repo.CreateTag(tag, fmt.Sprintf("Release %s", tag)); err != nil {
				return err
			}
		}

		if bumpJSON {
			return printJSON(bumpReport{
				Current:    current,
				Next:       next,
				Tag:        tag,
				TagCreated: bumpCreateTag,
			})
		}

		fmt.Printf("%s -> %s\n", current, next)
		if bumpCreateTag {
			fmt.Printf("✓ Created tag %s\n", tag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bumpCmd)

	bumpCmd.Flags().StringVar(&bumpCurrent, "current", "", "Current version (default: latest semver tag in the repo)")
	bumpCmd.Flags().StringVar(&bumpRepoDir, "repo", ".", "Git repository to read tags from")
	bumpCmd.Flags().StringVar(&bumpTagPrefix, "tag-prefix", "", "Tag prefix (default: from config, usually 'v')")
	bumpCmd.Flags().BoolVar(&bumpCreateTag, "tag", false, "Create an annotated git tag for the new version")
	bumpCmd.Flags().BoolVar(&bumpJSON, "json", false, "Emit machine-readable JSON to stdout")
}
