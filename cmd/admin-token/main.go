// Command admin-token generates an admin bearer token and the bcrypt hash to put in
// ADMIN_TOKEN_HASH.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "admin-token: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		size  int
		cost  int
		token string
	)
	flagSet := pflag.NewFlagSet("admin-token", pflag.ContinueOnError)
	flagSet.IntVar(&size, "bytes", 32, "random bytes in a generated token")
	flagSet.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	flagSet.StringVar(&token, "token", "", "hash this token instead of generating one")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if token == "" {
		if size < 16 {
			return fmt.Errorf("--bytes must be at least 16")
		}
		buf := make([]byte, size)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		token = base64.RawURLEncoding.EncodeToString(buf)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}

	fmt.Fprintf(out, "token: %s\n", token)
	fmt.Fprintf(out, "ADMIN_TOKEN_HASH=%s\n", hash)
	return nil
}
