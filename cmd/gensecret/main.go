package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const SecretKeyBytesLen = 32

// Prints a fresh pair of signing secrets in '.env' format.
// The service refuses to start when the two secrets are equal, so both are
// generated in one go.
func main() {
	secret := func() string {
		b := make([]byte, SecretKeyBytesLen)

		_, err := rand.Read(b)
		if err != nil {
			fmt.Printf("error while generating secret key: %v", err)
			os.Exit(1)
		}

		return hex.EncodeToString(b)
	}

	fmt.Printf("ACCESS_SECRET=%s\n", secret())
	fmt.Printf("REFRESH_SECRET=%s\n", secret())
}
