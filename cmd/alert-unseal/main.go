package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
)

func main() {
	var (
		cipherPath string
		keyPath    string
		outPath    string
	)
	flag.StringVar(&cipherPath, "cipher", "", "Path to the alert .enc file")
	flag.StringVar(&keyPath, "key", "", "Path to the alert .key file (defaults to the .enc path with a .key suffix)")
	flag.StringVar(&outPath, "out", "", "Write plaintext to this file instead of stdout")
	flag.Parse()

	logr, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	if cipherPath == "" {
		logr.Fatal("missing -cipher")
	}
	if keyPath == "" {
		keyPath = strings.TrimSuffix(cipherPath, ".enc") + ".key"
	}

	plain, err := service.Unseal(cipherPath, keyPath)
	if err != nil {
		logr.Fatal("unseal alert", zap.String("cipher", cipherPath), zap.Error(err))
	}

	if outPath == "" {
		os.Stdout.Write(plain) //nolint:errcheck
		fmt.Println()
		return
	}
	if err := os.WriteFile(outPath, plain, 0o600); err != nil {
		logr.Fatal("write plaintext", zap.String("out", outPath), zap.Error(err))
	}
	logr.Info("alert unsealed", zap.String("out", outPath))
}
