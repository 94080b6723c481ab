package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// encryptCmd encrypts one or more plaintext values into envelopes
var encryptCmd = &cobra.Command{
	Use:   "encrypt [plaintext...]",
	Short: "Encrypt values into envelopes",
	Long: `Encrypt one or more plaintext values under the current stage's secret key.
With no arguments, reads one value per line from stdin. Each output line is
an ENC2:v1 envelope.`,
	RunE: runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	values := args
	if len(values) == 0 {
		var err error
		values, err = readLines(os.Stdin)
		if err != nil {
			return err
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("nothing to encrypt")
	}

	envelopes, err := service.EncryptMultiple(values, keyName)
	if err != nil {
		return err
	}

	for _, envelope := range envelopes {
		fmt.Println(envelope)
	}
	return nil
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return lines, nil
}
