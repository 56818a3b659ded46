// Package blackbox implements the external batch black-box evaluator
// protocol (spec 6, "Black-box batch protocol"): write a block of
// trial inputs to a file, invoke the user's executable on it, and
// parse one output line per input line.
//
// Process management (timeout, process-group kill so children die
// with the parent) is grounded on rwcarlsen-cloudlus/cloudlus/job.go's
// networked job runner (Job.Execute), collapsed from a
// long-lived worker daemon to a single blocking batch call since the
// core only needs os/exec run-to-completion semantics here.
package blackbox

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds how long one batch invocation may run before
// being killed (spec 7's evaluator-failure handling applies once it
// fires: the batch is marked failed, not the whole algorithm).
var DefaultTimeout = 60 * time.Second

// Row is one trial point's raw black-box output (spec DATA MODEL,
// "Eval record"). Ok is false if the corresponding output line is
// empty, holds any non-numeric token, or is missing; a non-zero exit
// or a timeout leaves every row of the batch not Ok.
type Row struct {
	Output []float64
	Ok     bool
}

// Batch is an os/exec-backed implementation of the batch evaluator
// protocol against an external BB_EXE program (spec 6).
type Batch struct {
	Exe     string
	Timeout time.Duration
	Dir     string // working directory for temp input files; "" means os.TempDir()
}

// NewBatch builds a Batch evaluator invoking exe with one argument: a
// temp file path containing the block's inputs.
func NewBatch(exe string) *Batch {
	return &Batch{Exe: exe, Timeout: DefaultTimeout}
}

// Eval writes one whitespace-separated input line per row in inputs,
// invokes Exe on the resulting file, and parses one output line per
// input line in order (spec 6). Exit code 0 is required; a non-zero
// exit aborts the whole batch (every row's Ok is false).
func (b *Batch) Eval(ctx context.Context, inputs [][]float64) ([]Row, error) {
	dir := b.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	infile := fmt.Sprintf("%s/mads-bb-%s.txt", dir, uuid.New().String())
	if err := writeInputFile(infile, inputs); err != nil {
		return nil, err
	}
	defer os.Remove(infile)

	timeout := b.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, b.Exe, infile)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() != nil {
		killGroup(cmd)
		return allFailed(len(inputs)), fmt.Errorf("blackbox: %s timed out after %v", b.Exe, timeout)
	}
	if err != nil {
		return allFailed(len(inputs)), fmt.Errorf("blackbox: %s exited with error: %w (stderr: %s)", b.Exe, err, stderr.String())
	}

	return parseOutput(stdout.Bytes(), len(inputs)), nil
}

func writeInputFile(path string, inputs [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, row := range inputs {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	return w.Flush()
}

func parseOutput(out []byte, nRows int) []Row {
	rows := make([]Row, nRows)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	i := 0
	for scanner.Scan() && i < nRows {
		fields := strings.Fields(scanner.Text())
		vals := make([]float64, 0, len(fields))
		ok := len(fields) > 0
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		rows[i] = Row{Output: vals, Ok: ok}
		i++
	}
	for ; i < nRows; i++ {
		rows[i] = Row{Ok: false}
	}
	return rows
}

func allFailed(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{Ok: false}
	}
	return rows
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return
	}
	syscall.Kill(-pgid, syscall.SIGTERM)
}
