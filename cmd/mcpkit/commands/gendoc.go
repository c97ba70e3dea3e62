package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outputDir, _ := cmd.Flags().GetString("dir")
		if err := genDocs(afero.NewOsFs(), outputDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

func genDocs(fsys afero.Fs, outputDir string) error {
	if outputDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir <path>")
	}
	if err := fsys.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	rootCmd.DisableAutoGenTag = true
	for _, cmd := range commandTree(rootCmd) {
		if !cmd.IsAvailableCommand() && cmd != rootCmd {
			continue
		}
		name := strings.ReplaceAll(cmd.CommandPath(), " ", "_") + ".md"
		f, err := fsys.Create(filepath.Join(outputDir, name))
		if err != nil {
			return errors.Wrapf(err, "creating %s", name)
		}
		if _, err := f.WriteString(frontmatter(name)); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "writing %s", name)
		}
		if err := doc.GenMarkdownCustom(cmd, f, linkHandler); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "generating %s", name)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "closing %s", name)
		}
	}
	return nil
}

func commandTree(root *cobra.Command) []*cobra.Command {
	out := []*cobra.Command{root}
	for _, c := range root.Commands() {
		out = append(out, commandTree(c)...)
	}
	return out
}

// frontmatter titles mcpkit_backup_list.md as "backup list".
func frontmatter(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.TrimPrefix(strings.ReplaceAll(base, "_", " "), "mcpkit ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
draft: false
toc: true
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
