package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/healthcheck"
	"github.com/tyemirov/winvitals/internal/inventory"
	"github.com/tyemirov/winvitals/internal/maintenance"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	"github.com/tyemirov/winvitals/internal/utils"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
	"github.com/tyemirov/winvitals/internal/version"
)

const (
	applicationNameConstant                            = "winvitals"
	applicationShortDescriptionConstant                = "Inventory, health checks and maintenance for Windows hosts"
	applicationLongDescriptionConstant                 = "winvitals collects a read-only host inventory, verifies or repairs the component store, system files and volumes, and runs routine maintenance. Every run prints one report with a result per task."
	configFileFlagNameConstant                         = "config"
	configFileFlagUsageConstant                        = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                           = "log-level"
	logLevelFlagUsageConstant                          = "Override the configured log level."
	logFormatFlagNameConstant                          = "log-format"
	logFormatFlagUsageConstant                         = "Override the configured log format (structured or console)."
	outputFormatFlagNameConstant                       = "output"
	outputFormatFlagUsageConstant                      = "Report format."
	metricsFileFlagNameConstant                        = "metrics-file"
	metricsFileFlagUsageConstant                       = "Write task results as Prometheus textfile metrics to this path."
	versionFlagNameConstant                            = "version"
	versionFlagUsageConstant                           = "Print the application version and exit"
	versionOutputTemplateConstant                      = "winvitals version: %s\n"
	versionCommandUseNameConstant                      = "version"
	versionCommandShortDescriptionConstant             = "Print the winvitals version"
	versionCommandLongDescriptionConstant              = "version prints the current winvitals release identifier."
	commonConfigurationKeyConstant                     = "common"
	commonLogLevelConfigKeyConstant                    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                   = commonConfigurationKeyConstant + ".log_format"
	commonOutputFormatConfigKeyConstant                = commonConfigurationKeyConstant + ".output_format"
	commonMetricsFileConfigKeyConstant                 = commonConfigurationKeyConstant + ".metrics_file"
	environmentPrefixConstant                          = "WINVITALS"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationInitializedMessageConstant            = "configuration initialized"
	configurationLogLevelFieldConstant                 = "log_level"
	configurationLogFormatFieldConstant                = "log_format"
	configurationOutputFormatFieldConstant             = "output_format"
	configurationFileFieldConstant                     = "config_file"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                    = "unable to flush logger: %w"
	outputFormatErrorTemplateConstant                  = "invalid --%s value: %w"
	configurationInitializedConsoleTemplateConstant    = "%s | log level=%s | log format=%s | output=%s | config file=%s"
	defaultConfigurationSearchPathConstant             = "."
	userConfigurationDirectoryNameConstant             = ".winvitals"
	configurationSearchPathEnvironmentVariableConstant = "WINVITALS_CONFIG_SEARCH_PATH"
	sysinternalsDirectoryNameConstant                  = "Sysinternals"
)

// linkedVersion is populated at build time with -ldflags "-X github.com/tyemirov/winvitals/cmd/cli.linkedVersion=<version>".
var linkedVersion string

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration   `mapstructure:"common"`
	Inventory   inventory.CommandConfiguration   `mapstructure:"inventory"`
	HealthCheck healthcheck.CommandConfiguration `mapstructure:"healthcheck"`
	Maintenance maintenance.CommandConfiguration `mapstructure:"maintenance"`
}

// ApplicationCommonConfiguration holds logging and report settings shared by every command.
type ApplicationCommonConfiguration struct {
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	OutputFormat string `mapstructure:"output_format"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          loggerOutputsFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	outputFormatFlagValue  string
	metricsFileFlagValue   string
	commandContextAccessor utils.CommandContextAccessor
	hostPaths              platform.HostPaths
	collaborators          collaboratorFactory
	versionFlag            bool
	versionResolver        func() string
	exitFunction           func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		hostPaths:              platform.ResolveHostPaths(platform.ProcessEnvironment()),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit
	application.collaborators = newSystemCollaborators()

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			versionRequested := application.versionFlag
			if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
				versionRequested = flagValue
			}

			if versionRequested {
				application.printVersion(command.OutOrStdout())
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.outputFormatFlagValue,
		outputFormatFlagNameConstant,
		string(taskengine.OutputFormatJSON),
		flagutils.FormatChoiceUsage(
			string(taskengine.OutputFormatJSON),
			[]string{
				string(taskengine.OutputFormatJSON),
				string(taskengine.OutputFormatYAML),
				string(taskengine.OutputFormatConsole),
			},
			outputFormatFlagUsageConstant,
		),
	)
	cobraCommand.PersistentFlags().StringVar(&application.metricsFileFlagValue, metricsFileFlagNameConstant, "", metricsFileFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	cobraCommand.AddCommand(&cobra.Command{
		Use:   versionCommandUseNameConstant,
		Short: versionCommandShortDescriptionConstant,
		Long:  versionCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.OutOrStdout())
			return nil
		},
	})

	runtime := application.sharedRuntime()

	inventoryBuilder := inventory.CommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConfigurationProvider: application.inventoryConfiguration,
		DependenciesProvider:  application.inventoryDependencies,
		PrivilegeChecker:      runtime.PrivilegeChecker,
		Publisher:             runtime.Publisher,
	}
	if inventoryCommand, buildError := inventoryBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(inventoryCommand)
	}

	healthCheckBuilder := healthcheck.CommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConfigurationProvider: application.healthCheckConfiguration,
		DependenciesProvider:  application.healthCheckDependencies,
		PrivilegeChecker:      runtime.PrivilegeChecker,
		Publisher:             runtime.Publisher,
	}
	if healthCheckCommand, buildError := healthCheckBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(healthCheckCommand)
	}

	maintenanceBuilder := maintenance.CommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConfigurationProvider: application.maintenanceConfiguration,
		DependenciesProvider:  application.maintenanceDependencies,
		PrivilegeChecker:      runtime.PrivilegeChecker,
		Publisher:             runtime.Publisher,
	}
	if maintenanceCommand, buildError := maintenanceBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(maintenanceCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(os.Args[1:])

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func (application *Application) sharedRuntime() runcommand.Runtime {
	return runcommand.Runtime{
		LoggerProvider:   application.diagnosticLogger,
		PrivilegeChecker: platform.ElevationChecker{},
		Publisher:        runcommand.OutputPublisher{LoggerProvider: application.diagnosticLogger},
	}
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		defaultSearchPaths := []string{defaultConfigurationSearchPathConstant}
		return append(defaultSearchPaths, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, userConfigurationDirectoryNameConstant)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))

	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath)
	}

	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:    string(utils.LogFormatStructured),
		commonOutputFormatConfigKeyConstant: string(taskengine.OutputFormatJSON),
		commonMetricsFileConfigKeyConstant:  "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, outputFormatFlagNameConstant) {
		application.configuration.Common.OutputFormat = application.outputFormatFlagValue
	}
	if application.persistentFlagChanged(command, metricsFileFlagNameConstant) {
		application.configuration.Common.MetricsFile = application.metricsFileFlagValue
	}

	if _, parseError := taskengine.ParseOutputFormat(application.configuration.Common.OutputFormat); parseError != nil {
		return fmt.Errorf(outputFormatErrorTemplateConstant, outputFormatFlagNameConstant, parseError)
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithReportSettings(updatedContext, utils.ReportSettings{
			OutputFormat:    application.configuration.Common.OutputFormat,
			MetricsFilePath: application.configuration.Common.MetricsFile,
		})
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) diagnosticLogger() *zap.Logger {
	return application.logger
}

func (application *Application) inventoryConfiguration() inventory.CommandConfiguration {
	return application.configuration.Inventory
}

func (application *Application) healthCheckConfiguration() healthcheck.CommandConfiguration {
	return application.configuration.HealthCheck
}

func (application *Application) maintenanceConfiguration() maintenance.CommandConfiguration {
	configuration := application.configuration.Maintenance
	if len(strings.TrimSpace(configuration.Sysinternals.MarkerFile)) == 0 {
		configuration.Sysinternals.MarkerFile = maintenance.DefaultCommandConfiguration().Sysinternals.MarkerFile
	}
	return configuration
}

// sysinternalsConfiguration resolves the install directory under the native Program Files when none is configured.
func (application *Application) sysinternalsConfiguration(configuration maintenance.SysinternalsConfiguration) maintenance.SysinternalsConfiguration {
	resolved := configuration
	if len(strings.TrimSpace(resolved.InstallDirectory)) == 0 {
		resolved.InstallDirectory = platform.JoinWindowsPath(application.hostPaths.ProgramFilesDirectory, sysinternalsDirectoryNameConstant)
	}
	return resolved
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configuration.Common.OutputFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationOutputFormatFieldConstant, application.configuration.Common.OutputFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) resolveVersion() string {
	resolved := version.Detect(version.Dependencies{LinkedVersion: linkedVersion})
	trimmed := strings.TrimSpace(resolved)
	if len(trimmed) == 0 {
		return resolved
	}
	return trimmed
}

func (application *Application) printVersion(writer io.Writer) {
	fmt.Fprintf(writer, versionOutputTemplateConstant, application.versionResolver())
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
