package main

import (
	"fmt"
	"os"

	"github.com/vanderheijden86/cattree/pkg/hooks"
)

// withExportHooks runs the project's pre-export hooks, then write, then the
// post-export hooks. A failing pre-export hook cancels the export.
func withExportHooks(noHooks bool, ctx hooks.ExportContext, write func() error) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}
	executor, err := hooks.RunHooks(dir, ctx, noHooks)
	if err != nil {
		return fmt.Errorf("loading hooks: %w", err)
	}
	if executor == nil {
		return write()
	}

	if err := executor.RunPreExport(); err != nil {
		fmt.Fprintln(os.Stderr, executor.Summary())
		return err
	}
	if err := write(); err != nil {
		return err
	}
	postErr := executor.RunPostExport()
	if s := executor.Summary(); s != "" {
		fmt.Fprintln(os.Stderr, s)
	}
	return postErr
}
