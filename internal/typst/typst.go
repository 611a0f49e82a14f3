package typst

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
)

type Compiler interface {
	Compile(ctx context.Context, opts CompileOpts) (string, error)
	CompileToBytes(ctx context.Context, opts CompileOpts) ([]byte, error)
	CompileTemplate(ctx context.Context, templateName string, data []byte, opts ...CompileOptsBuilder) ([]byte, error)
	CleanupGeneratedFiles(files ...string)
}

// compiler shells out to the typst binary
type compiler struct {
	logger *logger.Logger
	// Path to the typst binary
	binaryPath string
	// Directory where fonts are stored
	fontDir string
	// Directory where templates are stored
	templateDir string
	// Directory for output files
	outputDir string
}

// CompileOpts contains options for compiling a Typst document
type CompileOpts struct {
	// Input file path
	InputFile string
	// Output file name inside the output dir (optional, a temp name is used otherwise)
	OutputFile string
	// Font paths to include
	FontDirs []string
	// Additional command-line arguments
	ExtraArgs []string
}

type CompileOptsBuilder func(c *CompileOpts)

func WithOutputFile(outputFile string) CompileOptsBuilder {
	return func(c *CompileOpts) {
		c.OutputFile = outputFile
	}
}

func WithFontDirs(fontDirs ...string) CompileOptsBuilder {
	return func(c *CompileOpts) {
		c.FontDirs = fontDirs
	}
}

func WithExtraArgs(extraArgs ...string) CompileOptsBuilder {
	return func(c *CompileOpts) {
		c.ExtraArgs = append(c.ExtraArgs, extraArgs...)
	}
}

// NewCompiler creates a new Typst compiler
func NewCompiler(logger *logger.Logger, binaryPath, fontDir, templateDir, outputDir string) Compiler {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &compiler{
		logger:      logger,
		binaryPath:  binaryPath,
		fontDir:     fontDir,
		templateDir: templateDir,
		outputDir:   outputDir,
	}
}

// Compile compiles a Typst document to PDF and returns the output path
func (c *compiler) Compile(ctx context.Context, opts CompileOpts) (string, error) {
	var outputFile string
	if opts.OutputFile != "" {
		outputFile = filepath.Join(c.outputDir, opts.OutputFile)
	} else {
		tmpFile, err := os.CreateTemp(c.outputDir, "typst-*.pdf")
		if err != nil {
			return "", ierr.WithError(err).
				WithMessage("failed to create temporary output file").
				WithHint("Failed to render the document").
				Mark(ierr.ErrSystem)
		}
		tmpFile.Close()
		outputFile = tmpFile.Name()
	}

	var fontDirs []string
	if c.fontDir != "" {
		fontDirs = append(fontDirs, c.fontDir)
	}
	fontDirs = append(fontDirs, opts.FontDirs...)

	args := []string{"compile", "--root", "/"}
	for _, dir := range fontDirs {
		args = append(args, "--font-path", dir)
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, opts.InputFile, outputFile)

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		c.CleanupGeneratedFiles(outputFile)
		return "", ierr.WithError(err).
			WithMessage("typst compilation failed").
			WithHint("Failed to render the document").
			WithReportableDetails(map[string]any{
				"stderr": stderr.String(),
			}).
			Mark(ierr.ErrSystem)
	}

	c.logger.Debugw("typst compilation finished", "input", opts.InputFile, "output", outputFile)
	return outputFile, nil
}

// CompileToBytes compiles a Typst document and returns the PDF content as bytes.
// The output file is removed afterwards.
func (c *compiler) CompileToBytes(ctx context.Context, opts CompileOpts) ([]byte, error) {
	pdfPath, err := c.Compile(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer c.CleanupGeneratedFiles(pdfPath)

	out, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to read compiled document").
			Mark(ierr.ErrSystem)
	}
	return out, nil
}

// CompileTemplate compiles templateName with data, a JSON document the
// template reads with
//
//	#let data = json(sys.inputs.path)
func (c *compiler) CompileTemplate(
	ctx context.Context,
	templateName string,
	data []byte,
	opts ...CompileOptsBuilder,
) ([]byte, error) {
	templatePath, err := filepath.Abs(filepath.Join(c.templateDir, templateName))
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	if _, err := os.Stat(templatePath); err != nil {
		return nil, ierr.WithError(err).
			WithMessagef("template not found: %s", templatePath).
			WithHint("Failed to render the document").
			Mark(ierr.ErrSystem)
	}

	jsonFile, err := os.CreateTemp(c.outputDir, "typst-*.json")
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to create temporary json file").
			Mark(ierr.ErrSystem)
	}
	defer c.CleanupGeneratedFiles(jsonFile.Name())

	if _, err := jsonFile.Write(data); err != nil {
		jsonFile.Close()
		return nil, ierr.WithError(err).
			WithMessage("failed to write data to json file").
			Mark(ierr.ErrSystem)
	}
	jsonFile.Close()

	jsonPath, err := filepath.Abs(jsonFile.Name())
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	compileOpts := CompileOpts{
		InputFile: templatePath,
		ExtraArgs: []string{"--input", "path=" + jsonPath},
	}
	for _, opt := range opts {
		opt(&compileOpts)
	}

	return c.CompileToBytes(ctx, compileOpts)
}

// CleanupGeneratedFiles removes temporary files created during compilation
func (c *compiler) CleanupGeneratedFiles(files ...string) {
	for _, file := range files {
		if file == "" {
			continue
		}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			c.logger.Warnw("failed to remove generated file", "file", file, "error", err)
		}
	}
}
