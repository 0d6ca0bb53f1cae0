package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// configInput is where the wizard reads answers from.
var configInput io.Reader = os.Stdin

var configAnnotations = map[string]string{settingsOnly: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change the settings stored in config.toml.

Use subcommands to set individual keys or run the interactive wizard.`,
	Annotations: configAnnotations,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: configAnnotations,
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Set one setting",
	Long:        `Set one setting. Lists take comma-separated values; durations use Go syntax such as 30s or 15m.`,
	Args:        cobra.ExactArgs(2),
	Annotations: configAnnotations,
	RunE:        runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List the recognised setting keys",
	Args:        cobra.NoArgs,
	Annotations: configAnnotations,
	RunE:        runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:         "check",
	Short:       "Check the configured capability providers respond",
	Args:        cobra.NoArgs,
	Annotations: configAnnotations,
	RunE:        runConfigCheck,
}

var configWizardCmd = &cobra.Command{
	Use:         "wizard",
	Short:       "Interactive setup wizard",
	Long:        `Run an interactive wizard to choose the embedding, summary and OCR providers.`,
	Args:        cobra.NoArgs,
	Annotations: configAnnotations,
	RunE:        runConfigWizard,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Workers: %d\n", settings.Sync.Workers)
	cmd.Printf("  Default format: %s\n", settings.Sync.DefaultFormat)
	cmd.Printf("  Include hidden: %t\n", settings.Sync.IncludeHidden)
	if len(settings.Sync.Exclude) > 0 {
		cmd.Printf("  Exclude: %s\n", strings.Join(settings.Sync.Exclude, ", "))
	}
	cmd.Printf("  Extraction timeout: %s\n", settings.Sync.ExtractionTimeout)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.DefaultMode.Description())
	cmd.Printf("  Limit: %d\n", settings.Search.DefaultLimit)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	printProviderDetails(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	cmd.Println()

	cmd.Println("[Summary]")
	cmd.Printf("  Provider: %s\n", settings.Summary.Provider.Description())
	printProviderDetails(cmd, settings.Summary.Provider, settings.Summary.Model,
		settings.Summary.BaseURL, settings.Summary.APIKey)
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Provider: %s\n", settings.OCR.Provider.Description())
	cmd.Printf("  Language: %s\n", settings.OCR.Language)
	cmd.Println()

	cmd.Println("[Session]")
	cmd.Printf("  TTL: %s\n", settings.Session.TTL)
	cmd.Printf("  Host: %s\n", settings.Session.Host)
	return nil
}

func printProviderDetails(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if provider == domain.AIProviderOllama && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Print("Validating configuration... ")
	if err := settingsService.Validate(); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

// wizardStep is one provider choice in the wizard.
type wizardStep struct {
	title     string
	prefix    string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
}

var wizardSteps = []wizardStep{
	{
		title:  "Embedding Provider",
		prefix: "embedding",
		providers: []domain.AIProvider{
			domain.AIProviderHashing, domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderNone,
		},
		models: domain.DefaultEmbeddingModels(),
	},
	{
		title:  "Summary Provider",
		prefix: "summary",
		providers: []domain.AIProvider{
			domain.AIProviderFrequency, domain.AIProviderOllama, domain.AIProviderOpenAI,
			domain.AIProviderAnthropic, domain.AIProviderNone,
		},
		models: domain.DefaultSummaryModels(),
	},
	{
		title:     "OCR Provider",
		prefix:    "ocr",
		providers: []domain.AIProvider{domain.AIProviderNone, domain.AIProviderTesseract},
	},
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("docmirror Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(configInput)
	for i, step := range wizardSteps {
		if err := configureProvider(cmd, reader, i+1, step); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, n int, step wizardStep) error {
	heading := fmt.Sprintf("Step %d: Select %s", n, step.title)
	cmd.Println(heading)
	cmd.Println(strings.Repeat("-", len(heading)))
	for i, p := range step.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(step.providers), 1)
	provider := step.providers[idx-1]

	if err := settingsService.Set(step.prefix+".provider", provider.String()); err != nil {
		return err
	}

	if defaultModel, ok := step.models[provider]; ok {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model := readLine(reader)
		if model == "" {
			model = defaultModel
		}
		if err := settingsService.Set(step.prefix+".model", model); err != nil {
			return err
		}
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		apiKey := readPassword(reader)
		cmd.Println()
		if apiKey != "" {
			if err := settingsService.Set(step.prefix+".api_key", apiKey); err != nil {
				return err
			}
		}
	}

	cmd.Printf("%s set to: %s\n\n", step.title, provider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if f, ok := configInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
