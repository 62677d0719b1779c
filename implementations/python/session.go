package python

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"sync"

	"github.com/notargets/defelement/types"
)

//go:embed helper.py
var helperScript string

type request struct {
	Op      string                 `json:"op"`
	Library string                 `json:"library,omitempty"`
	Family  string                 `json:"family,omitempty"`
	Cell    string                 `json:"cell,omitempty"`
	Degree  int                    `json:"degree"`
	Kwargs  map[string]interface{} `json:"kwargs,omitempty"`
	Handle  int                    `json:"handle"`
	Points  [][]float64            `json:"points,omitempty"`
}

type response struct {
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message,omitempty"`
	Handle     int       `json:"handle"`
	EntityDOFs [][][]int `json:"entity_dofs,omitempty"`
	Shape      []int     `json:"shape,omitempty"`
	Data       []float64 `json:"data,omitempty"`
}

// err maps a helper failure onto the sentinel errors
func (r response) err() error {
	switch r.Error {
	case "":
		return nil
	case "missing":
		return fmt.Errorf("%s: %w", r.Message, types.ErrLibraryMissing)
	case "not implemented":
		return fmt.Errorf("%s: %w", r.Message, types.ErrNotImplemented)
	}
	return errors.New(r.Message)
}

// session is one long-lived interpreter running the helper script. Requests
// and responses are single lines of JSON, answered in order.
type session struct {
	mu     sync.Mutex
	w      io.WriteCloser
	rc     io.Closer
	r      *bufio.Reader
	cmd    *exec.Cmd
	stderr *lockedBuffer
	dead   error
}

func newSession(r io.ReadCloser, w io.WriteCloser) *session {
	return &session{w: w, rc: r, r: bufio.NewReaderSize(r, 1<<20)}
}

// startSession runs the helper under the given interpreter. A missing
// interpreter is reported as a missing library.
func startSession(python string) (s *session, err error) {
	var (
		cmd    = exec.Command(python, "-u", "-c", helperScript)
		stderr = &lockedBuffer{}
		stdin  io.WriteCloser
		stdout io.ReadCloser
	)
	cmd.Stderr = stderr
	if stdin, err = cmd.StdinPipe(); err != nil {
		return
	}
	if stdout, err = cmd.StdoutPipe(); err != nil {
		return
	}
	if err = cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%s: %v: %w", python, err, types.ErrLibraryMissing)
		}
		return
	}
	s = newSession(stdout, stdin)
	s.cmd, s.stderr = cmd, stderr
	return
}

func (s *session) call(ctx context.Context, req request) (resp response, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead != nil {
		return resp, s.dead
	}
	var (
		line []byte
		done = make(chan error, 1)
	)
	if line, err = json.Marshal(req); err != nil {
		return
	}
	go func() {
		if _, err := s.w.Write(append(line, '\n')); err != nil {
			done <- err
			return
		}
		reply, err := s.r.ReadBytes('\n')
		if err == nil {
			err = json.Unmarshal(reply, &resp)
		}
		done <- err
	}()
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
		s.kill()
		<-done
	}
	if err != nil {
		s.dead = fmt.Errorf("helper session ended: %w", err)
		if s.stderr != nil && s.stderr.Len() > 0 {
			s.dead = fmt.Errorf("%w: %s", s.dead, tail(s.stderr.String(), 2000))
		}
		err = s.dead
		return
	}
	err = resp.err()
	return
}

func (s *session) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.w.Close()
	_ = s.rc.Close()
}

// Close ends the interpreter by closing its input.
func (s *session) Close() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead == nil {
		s.dead = errors.New("helper session closed")
	}
	err = s.w.Close()
	if s.cmd != nil {
		if werr := s.cmd.Wait(); err == nil {
			err = werr
		}
		s.cmd = nil
	}
	return
}

// lockedBuffer collects the interpreter's stderr, which exec copies from
// its own goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
