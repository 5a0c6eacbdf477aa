package pkg

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// TestStatus describes the outcome of a single test file.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// TestResult records what happened to one test file.
type TestResult struct {
	Name    string
	Command string
	Status  TestStatus
	Err     error
}

// TestReport aggregates the results of a run-tests invocation.
type TestReport struct {
	Results []TestResult
	Passed  int
	Failed  int
	Skipped int
}

// TestRunOptions control a run-tests invocation.
type TestRunOptions struct {
	// Skip lists test file names to exclude, in addition to the
	// configured always-skipped names.
	Skip []string
	// Timeout limits each test command. Zero means no limit.
	Timeout time.Duration
	// Stdout and Stderr receive the test commands' output. They default to
	// the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

var errTooShort = eris.New("file is shorter than the directive line")

// RunTests walks the configured tests directory and runs the shell command
// embedded on each file's directive line. Files without a directive are
// skipped silently; files too short to have one are skipped with a warning.
// Tests run sequentially; a failing test doesn't stop the remaining ones.
func RunTests(ctx context.Context, cfg Config, projectRoot string, opts TestRunOptions) (*TestReport, error) {
	testsDir := filepath.Join(projectRoot, cfg.TestsDir)
	entries, err := ioutil.ReadDir(testsDir)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to read tests directory %s", testsDir)
	}

	skip := make(map[string]bool)
	for _, name := range cfg.AlwaysSkip {
		skip[name] = true
	}
	for _, name := range opts.Skip {
		skip[name] = true
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	report := new(TestReport)
	for _, entry := range entries {
		if entry.IsDir() || skip[entry.Name()] {
			continue
		}

		name := entry.Name()
		command, err := readDirective(filepath.Join(testsDir, name), cfg.DirectiveLine, cfg.CommentMarker)
		if err != nil {
			if !eris.Is(err, errTooShort) {
				return nil, err
			}

			log(ctx).Warn().
				Str("test", name).
				Msgf("has no line %d, skipping", cfg.DirectiveLine)
			report.record(TestResult{Name: name, Status: TestSkipped})
			continue
		}

		if command == "" {
			log(ctx).Debug().
				Str("test", name).
				Msg("no command directive, skipping")
			report.record(TestResult{Name: name, Status: TestSkipped})
			continue
		}

		log(ctx).Info().
			Str("test", name).
			Bool("command", true).
			Msg(command)

		err = runTestCommand(ctx, projectRoot, name, command, opts)
		if err != nil {
			log(ctx).Error().
				Str("test", name).
				Err(err).
				Msg("failed")
			report.record(TestResult{Name: name, Command: command, Status: TestFailed, Err: err})
			continue
		}

		report.record(TestResult{Name: name, Command: command, Status: TestPassed})
	}

	if report.Failed > 0 {
		return report, eris.Errorf("%d of %d tests failed", report.Failed, report.Passed+report.Failed)
	}

	return report, nil
}

func (r *TestReport) record(result TestResult) {
	r.Results = append(r.Results, result)

	switch result.Status {
	case TestPassed:
		r.Passed++
	case TestFailed:
		r.Failed++
	case TestSkipped:
		r.Skipped++
	}
}

// readDirective returns the command embedded on the given line of a test
// file. The empty string means the line exists but doesn't carry a command.
func readDirective(path string, lineNum int, marker string) (string, error) {
	handle, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to open %s", path)
	}
	defer handle.Close()

	scanner := bufio.NewScanner(handle)
	line := ""
	found := false
	num := 0
	for scanner.Scan() {
		num++
		if num == lineNum {
			line = scanner.Text()
			found = true
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return "", eris.Wrapf(err, "Failed to read %s", path)
	}

	if !found {
		return "", eris.Wrapf(errTooShort, "%s", path)
	}

	if !strings.HasPrefix(line, marker) {
		return "", nil
	}

	return strings.TrimSpace(strings.TrimPrefix(line, marker)), nil
}

func runTestCommand(ctx context.Context, projectRoot, name, command string, opts TestRunOptions) error {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(command), name)
	if err != nil {
		return eris.Wrapf(err, "failed to parse command %s", command)
	}

	runner, err := interp.New(
		interp.Dir(projectRoot),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, opts.Stdout, opts.Stderr),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	err = runner.Run(ctx, prog)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return eris.Errorf("exit status %d", status)
		}
		return err
	}

	return nil
}
