//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	serverBin        = "./bin/server"
	serverConfigPath = "configs/server.toml"
)

func goModDownload() error {
	return sh.Run("go", "mod", "download")
}

// Build builds server binary
func Build() error {
	mg.Deps(goModDownload)
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "build", "-o", serverBin, "./cmd")
}

// Run starts server
func Run() error {
	mg.Deps(Build)
	return sh.Run(serverBin, "-config", serverConfigPath)
}

// RunMem starts server on the in-memory storage
func RunMem() error {
	mg.Deps(Build)
	return sh.RunWith(map[string]string{
		"JWT_SECRET": "dev-secret",
	}, serverBin, "-config", "configs/mem.toml")
}

// Test runs unit tests. Mongo and postgres storage tests run when
// TEST_MONGO_URI and TEST_POSTGRES_DSN are set.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint from PATH
func Lint() error {
	return sh.Run("golangci-lint", "run", "./...")
}
