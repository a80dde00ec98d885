package commands

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

const configTemplate = `project_name: {{ .ProjectName }}

sites: {{ .Sites }}
i18n: {{ .I18n }}
subdomains: {{ .Subdomains }}
{{- if .Languages }}
languages: [{{ .Languages }}]
{{- end }}
append_slash: true

database:
  driver: {{ .Driver }}
  url: {{ .URL }}

server:
  addr: ":8080"

definitions:
  - name: seo
    fields:
      - name: title
        editable: true
        head: true
        head_tag: title
      - name: description
        editable: true
        head: true
        kind: text
      - name: keywords
        editable: true
        head: true
`

type initAnswers struct {
	ProjectName string
	Driver      string
	URL         string
	Sites       bool
	I18n        bool
	Subdomains  bool
	Languages   string
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a seometa.yml configuration interactively",
		RunE:  runInit,
	}
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing seometa.yml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat("seometa.yml"); err == nil && !initForce {
		return fmt.Errorf("seometa.yml already exists (use --force to overwrite)")
	}

	var answers initAnswers

	qs := []*survey.Question{
		{
			Name:     "projectName",
			Prompt:   &survey.Input{Message: "Project name:", Default: "seometa"},
			Validate: survey.Required,
		},
		{
			Name: "driver",
			Prompt: &survey.Select{
				Message: "Database:",
				Options: []string{"pgx", "sqlite3"},
				Default: "pgx",
			},
		},
	}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	urlDefault := "postgres://localhost:5432/seometa?sslmode=disable"
	if answers.Driver == "sqlite3" {
		urlDefault = "file:seometa.db"
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Database URL:",
		Default: urlDefault,
	}, &answers.URL, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Confirm{
		Message: "Scope metadata per site?",
	}, &answers.Sites); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Confirm{
		Message: "Scope metadata per language?",
	}, &answers.I18n); err != nil {
		return err
	}
	if answers.I18n {
		var langs string
		if err := survey.AskOne(&survey.Input{
			Message: "Languages (comma separated):",
			Default: "en",
		}, &langs); err != nil {
			return err
		}
		parts := strings.Split(langs, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		answers.Languages = strings.Join(parts, ", ")
	}
	if err := survey.AskOne(&survey.Confirm{
		Message: "Scope metadata per subdomain?",
	}, &answers.Subdomains); err != nil {
		return err
	}

	if err := writeConfig(&answers); err != nil {
		return err
	}

	success := color.New(color.FgGreen, color.Bold)
	success.Println("Created seometa.yml")
	fmt.Println("Next steps:")
	fmt.Println("  seometa migrate")
	fmt.Println("  seometa serve")
	return nil
}

func writeConfig(answers *initAnswers) error {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return err
	}
	f, err := os.Create("seometa.yml")
	if err != nil {
		return fmt.Errorf("creating seometa.yml: %w", err)
	}
	defer f.Close()
	return tmpl.Execute(f, answers)
}
