//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed against the in-memory backend.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-backend", "noop"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed against the Vulkan backend. Requires a Vulkan loader.
func (Run) Vulkan() error {
	fmt.Println("Run testbed (vulkan)...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-backend", "vulkan"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the full test suite with the race detector.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
