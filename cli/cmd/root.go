package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	envcrypt "github.com/sinugotshifhiwa4/pw-automation-framework-codebase"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/audit"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/envstage"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/secretstore"
)

var (
	cfgFile   string
	envDir    string
	stageName string
	keyName   string
	service   *envcrypt.Service
	resolver  *envstage.Resolver
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "envcrypt",
	Short: "Encrypt and decrypt credentials stored in per-environment secret files",
	Long: `Protects plaintext secrets persisted in per-environment configuration files.
Values are encrypted with AES-256-GCM under keys derived from a shared secret
with Argon2id, and carried in a versioned, MAC-protected text envelope.`,
	PersistentPreRunE: initializeService,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if service != nil {
			return service.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.envcrypt.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envDir, "env-dir", "e", "", "directory holding the per-environment secret files")
	rootCmd.PersistentFlags().StringVarP(&stageName, "stage", "s", "", "environment stage (dev, uat, prod)")
	rootCmd.PersistentFlags().StringVarP(&keyName, "key", "k", "", "secret key variable name (default is the stage's)")
	rootCmd.PersistentFlags().String("store-type", "", "storage backend type (file, s3)")
	rootCmd.PersistentFlags().String("audit-log", "", "audit log file path (enables file auditing)")

	flags := rootCmd.PersistentFlags()
	bindFlagOrPanic(flags, "env_dir", "env-dir")
	bindFlagOrPanic(flags, "stage", "stage")
	bindFlagOrPanic(flags, "store.type", "store-type")
	bindFlagOrPanic(flags, "audit.file_path", "audit-log")
}

func bindFlagOrPanic(flags *pflag.FlagSet, key, flag string) {
	if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".envcrypt")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("ENVCRYPT")
	viper.AutomaticEnv()

	// A missing config file is fine, a broken one is not
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func initializeService(cmd *cobra.Command, args []string) error {
	// config subcommands operate on the config file only
	if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
		return nil
	}

	dir := viper.GetString("env_dir")
	if dir == "" {
		dir = "envs"
	}

	var err error
	if stage := viper.GetString("stage"); stage != "" {
		resolver, err = envstage.New(envstage.Stage(stage), dir)
	} else {
		resolver, err = envstage.Load(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve stage: %w", err)
	}

	store, err := buildStore()
	if err != nil {
		return fmt.Errorf("failed to initialize secret store: %w", err)
	}

	opts := envcrypt.Options{
		DerivationTime:    viper.GetUint32("derivation.time"),
		DerivationMemory:  viper.GetUint32("derivation.memory"),
		DerivationThreads: uint8(viper.GetUint("derivation.threads")),
		EnableMemoryLock:  viper.GetBool("memory_lock"),
	}

	if auditPath := viper.GetString("audit.file_path"); auditPath != "" {
		opts.Audit = &audit.Config{
			Enabled: true,
			Type:    audit.FileAuditType,
			Options: map[string]interface{}{"file_path": auditPath},
		}
	}

	service, err = envcrypt.New(opts, store, resolver)
	if err != nil {
		return fmt.Errorf("failed to initialize crypto service: %w", err)
	}
	return nil
}

func buildStore() (secretstore.Store, error) {
	storeType := secretstore.StoreType(viper.GetString("store.type"))
	if storeType == "" || storeType == secretstore.FileStoreType {
		return secretstore.NewFileStore(), nil
	}

	return secretstore.NewStore(secretstore.StoreConfig{
		Type: storeType,
		Config: map[string]interface{}{
			"endpoint":          viper.GetString("store.endpoint"),
			"access_key_id":     viper.GetString("store.access_key_id"),
			"secret_access_key": viper.GetString("store.secret_access_key"),
			"bucket":            viper.GetString("store.bucket"),
			"use_ssl":           viper.GetBool("store.use_ssl"),
			"region":            viper.GetString("store.region"),
			"key_prefix":        viper.GetString("store.key_prefix"),
		},
	})
}

// configFilePath returns the path the config commands read and write.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".envcrypt.yaml"
	}
	return filepath.Join(home, ".envcrypt.yaml")
}
