package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// keygenCmd generates and stores the stage's secret key
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate and store the stage's secret key",
	Long: `Generate a 32-byte secret key, base64-encode it and store it under the
current stage's secret-key variable. An existing key is never overwritten;
in that case the existing key is kept and reported.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := service.GenerateAndStoreSecretKey()
	if err != nil {
		return err
	}

	fmt.Printf("Secret key stored under %s in %s\n", resolver.SecretKeyVariable(), resolver.SecretFilePath())
	// The key itself is printed once so it can be backed up out of band
	fmt.Println(key)
	return nil
}
