package constants_test

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/cellmap/pkg/constants"
)

// Example demonstrates using constants for common operations
func Example() {
	// Create directory with standard permissions
	dir := filepath.Join(os.TempDir(), "cellmap-example")
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	// Create file with standard permissions
	file := filepath.Join(dir, constants.DefaultRegistryFile)
	data := []byte("cell line\n")
	if err := os.WriteFile(file, data, constants.FilePermissions); err != nil {
		panic(err)
	}

	fmt.Printf("Created dir with %o permissions\n", constants.DirPermissions)
	fmt.Printf("Created file with %o permissions\n", constants.FilePermissions)
	// Output:
	// Created dir with 755 permissions
	// Created file with 644 permissions
}

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	// Context with operation timeout
	ctx, cancel := context.WithTimeout(
		context.Background(),
		constants.DefaultTimeout,
	)
	defer cancel()

	// Simulated operation
	select {
	case <-time.After(100 * time.Millisecond):
		fmt.Println("Operation completed")
	case <-ctx.Done():
		fmt.Println("Operation timed out")
	}

	fmt.Printf("Default timeout: %v\n", constants.DefaultTimeout)
	fmt.Printf("Command timeout: %v\n", constants.CommandTimeout)
	fmt.Printf("Build timeout: %v\n", constants.BuildTimeout)

	// Output:
	// Operation completed
	// Default timeout: 10s
	// Command timeout: 10m0s
	// Build timeout: 30m0s
}

// Example_lineBuffer shows sizing a scanner for long catalog lines
func Example_lineBuffer() {
	// Cellosaurus comment lines can exceed the default scanner buffer
	scanner := bufio.NewScanner(strings.NewReader("CC   Group: Long comment line.\n"))
	scanner.Buffer(make([]byte, constants.MaxLineBuffer), constants.MaxLineBuffer)

	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}

	// Output:
	// CC   Group: Long comment line.
}

// Example_concurrencyLimits demonstrates concurrency constants
func Example_concurrencyLimits() {
	// Source loaders run concurrently up to the limit
	jobs := make(chan int, 100)
	results := make(chan int, 100)

	for w := 0; w < constants.MaxConcurrentSources; w++ {
		go func() {
			for job := range jobs {
				results <- job * 2
			}
		}()
	}

	for i := 0; i < 20; i++ {
		jobs <- i
	}
	close(jobs)

	fmt.Printf("Loading with %d workers\n", constants.MaxConcurrentSources)
	// Output: Loading with 5 workers
}
