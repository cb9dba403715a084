package detector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// service is one running landmark provider child process.
type service struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	in    *bufio.Writer
	out   *bufio.Reader
}

func startService(python string, args []string) (*service, error) {
	cmd := exec.Command(python, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", python, err)
	}

	return &service{
		cmd:   cmd,
		stdin: stdin,
		in:    bufio.NewWriter(stdin),
		out:   bufio.NewReader(stdout),
	}, nil
}

// exchange sends one frame and returns the reply line.
func (s *service) exchange(jpeg []byte) ([]byte, error) {
	if err := writeFrame(s.in, jpeg); err != nil {
		return nil, err
	}
	line, err := s.out.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return line, nil
}

// stop closes stdin, which the service treats as shutdown, and waits.
func (s *service) stop() error {
	s.stdin.Close()
	return s.cmd.Wait()
}

// writeFrame frames data as a 4-byte big-endian length plus payload.
func writeFrame(w *bufio.Writer, data []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
