//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// binaries built from ./cmd.
var binaries = []string{"vtc-score", "vtc-inspect"}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles vtc-score and vtc-inspect.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_Score, Build_Inspect)
	return nil
}

// Build_Score compiles the vtc-score binary with version information.
func Build_Score() error {
	st.Deps(Init)
	return buildBinary("vtc-score")
}

// Build_Inspect compiles the vtc-inspect binary with version information.
func Build_Inspect() error {
	st.Deps(Init)
	return buildBinary("vtc-inspect")
}

func buildBinary(name string) error {
	out := "bin/" + name
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestVerbose runs tests with verbose output.
func TestVerbose() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "-v", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts and generated reports.
func Clean() error {
	for _, a := range []string{"bin/", "reports/", "coverage.out", "coverage.html"} {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, "bin/"+name); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Score namespace for corpus scoring targets.
type Score st.Namespace

// Run scores $VTC_APPLY_FOLDER against $VTC_DATABASE and writes
// reports/$VTC_SUBSET.csv unless VTC_REPORT_PATH is set. Any other VTC_*
// variable is read by vtc-score directly.
func (Score) Run() error {
	st.Deps(Build_Score)

	if os.Getenv("VTC_DATABASE") == "" || os.Getenv("VTC_APPLY_FOLDER") == "" {
		return fmt.Errorf("VTC_DATABASE and VTC_APPLY_FOLDER must be set")
	}
	var args []string
	if os.Getenv("VTC_REPORT_PATH") == "" {
		subset := os.Getenv("VTC_SUBSET")
		if subset == "" {
			subset = "test"
		}
		args = append(args, "--report-path", "reports/"+subset+".csv")
	}
	return sh.RunV("./bin/vtc-score", args...)
}

// UEM writes a UEM file covering the extent of every file in $REF_RTTM.
func (Score) UEM() error {
	ref := os.Getenv("REF_RTTM")
	if ref == "" {
		return fmt.Errorf("REF_RTTM must be set")
	}
	out := os.Getenv("UEM_OUT")
	if out == "" {
		out = strings.TrimSuffix(ref, ".rttm") + ".uem"
	}
	return sh.RunV("go", "run", "scripts/make-uem.go", "-rttm", ref, "-out", out)
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}
