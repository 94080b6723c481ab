package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// decryptCmd decrypts envelopes back to plaintext
var decryptCmd = &cobra.Command{
	Use:   "decrypt [envelope...]",
	Short: "Decrypt envelopes back to plaintext",
	Long: `Decrypt one or more ENC2:v1 envelopes under the current stage's secret key.
With no arguments, reads one envelope per line from stdin.`,
	RunE: runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	envelopes := args
	if len(envelopes) == 0 {
		var err error
		envelopes, err = readLines(os.Stdin)
		if err != nil {
			return err
		}
	}
	if len(envelopes) == 0 {
		return fmt.Errorf("nothing to decrypt")
	}

	plaintexts, err := service.DecryptMultiple(envelopes, keyName)
	if err != nil {
		return err
	}

	for _, plaintext := range plaintexts {
		fmt.Println(plaintext)
	}
	return nil
}
