package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/sprocc/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new sprocc routine project",
	Long: `Initialize a sprocc routine project into the specified directory.

The init command creates:
- sprocc.yaml project file (connection, session and placeholder defaults)
- Example routine sources with designation and parameter annotations
- README with usage instructions

Target directory must be empty or non-existent.

Examples:
  sprocc init .                    # Initialize in current directory
  sprocc init ./routines           # Initialize in ./routines
  sprocc init /absolute/path       # Initialize at absolute path

Available templates:
  basic    - One example routine for learning
  advanced - Session pinning, placeholders and every designation kind

Use 'sprocc init --list' to see available templates.`,
	Args: cobra.MinimumNArgs(0),
	RunE: runInit,
}

var (
	initTemplate string
	initDatabase string
	initList     bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "basic", "Template to use (basic, advanced)")
	initCmd.Flags().StringVarP(&initDatabase, "database", "d", "", "Database name written into sprocc.yaml (default: project name)")
	initCmd.Flags().BoolVar(&initList, "list", false, "List available templates")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initList {
		templates, err := scaffold.ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		for _, t := range templates {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("target path required\n\n" +
			"Usage: sprocc init <target_path> [flags]\n\n" +
			"Examples:\n" +
			"  sprocc init .          # Current directory\n" +
			"  sprocc init ./routines # Subdirectory\n\n" +
			"Use 'sprocc init --list' to see available templates")
	}

	targetPath := args[0]

	projectName := filepath.Base(targetPath)
	if projectName == "." || projectName == ".." || projectName == string(filepath.Separator) {
		cwd, err := os.Getwd()
		if err == nil {
			projectName = filepath.Base(cwd)
		} else {
			projectName = "routines"
		}
	}
	database := initDatabase
	if database == "" {
		database = projectName
	}
	verbose := getVerboseFlag(cmd)

	scaffolder := scaffold.NewScaffolder(verbose)
	err := scaffolder.CreateProject(initTemplate, targetPath, scaffold.Variables{
		ProjectName:  projectName,
		DatabaseName: database,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	tree, err := scaffold.BuildFileTree(targetPath)
	if err != nil {
		// Non-fatal, skip the tree display
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized successfully in '%s' using template '%s'\n\n", targetPath, initTemplate)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized successfully using template '%s'\n\n", initTemplate)
		fmt.Fprintln(os.Stderr, "Created structure:")
		fmt.Fprint(os.Stderr, tree)
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintf(os.Stderr, "  sprocc compile . -d %s\n", database)
	fmt.Fprintln(os.Stderr, "  # Or with placeholder overrides:")
	fmt.Fprintf(os.Stderr, "  sprocc compile . -d %s --placeholder SCHEMA=%s\n", database, database)
	return nil
}
