package common

import (
	"context"
	"fmt"

	"atsmatch/internal/errors"
	"atsmatch/internal/textsource"
)

// CreateInputFunc builds the operation input from the loaded sources.
type CreateInputFunc[Input any] func(sources []textsource.Source) (Input, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs the command's work.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// Runner carries what every file-based command needs.
type Runner struct {
	Files  *FileProcessor
	Output *OutputHandler
	Logger *errors.Logger
}

// NewRunner wires a FileProcessor and OutputHandler around loader.
func NewRunner(loader *textsource.Loader, logger *errors.Logger) *Runner {
	files := NewFileProcessor(loader, logger)
	return &Runner{
		Files:  files,
		Output: NewOutputHandler(files, logger),
		Logger: logger,
	}
}

// RunFileCommand loads args, builds the input, runs the operation and writes
// the formatted result.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	runner *Runner,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	sources, err := runner.Files.ReadSources(args...)
	if err != nil {
		return err
	}

	input, err := createInput(sources)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return runner.Output.HandleOutput(result, cmdConfig)
}

// RunCommand runs an operation that needs no input files and writes its result.
func RunCommand[Output any](
	ctx context.Context,
	runner *Runner,
	cmdConfig CommandConfig,
	operation func(context.Context) (Output, error),
) error {
	result, err := operation(ctx)
	if err != nil {
		return err
	}
	return runner.Output.HandleOutput(result, cmdConfig)
}
