// Package shell implements the line-oriented command interpreter: it
// tokenizes input lines and dispatches one FileSystem operation per
// line, printing exactly the success or error text the command
// language specifies.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"ldisksim/internal/fsys"
	"ldisksim/internal/ldisk"
)

// Shell drives a FileSystem from a stream of command lines. It owns no
// filesystem state itself beyond the mount lifecycle.
type Shell struct {
	out   io.Writer
	disk  *ldisk.Disk
	fs    *fsys.FileSystem
	log   *logrus.Entry
}

// New returns a Shell that writes command output to out. The
// filesystem is unmounted until an "in" command is processed.
func New(out io.Writer) *Shell {
	return &Shell{out: out, log: logrus.WithField("component", "shell")}
}

// Run reads lines from in until EOF or an "exit" command, dispatching
// each through Exec.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !s.Exec(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Exec processes a single command line, writing its result to the
// configured output. It returns false when the command was "exit" and
// the caller's loop should stop.
func (s *Shell) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprintln(s.out)
		return true
	}

	verb := fields[0]
	args := fields[1:]

	if verb == "exit" {
		return false
	}
	if verb != "in" && (s.fs == nil || !s.disk.Mounted()) {
		s.fail()
		return true
	}

	switch verb {
	case "in":
		s.cmdIn(args)
	case "cr":
		s.cmdCreate(args)
	case "de":
		s.cmdDestroy(args)
	case "op":
		s.cmdOpen(args)
	case "cl":
		s.cmdClose(args)
	case "wr":
		s.cmdWrite(args)
	case "rd":
		s.cmdRead(args)
	case "sk":
		s.cmdSeek(args)
	case "dr":
		s.cmdDirectory(args)
	case "sv":
		s.cmdSave(args)
	case "dump":
		s.cmdDump(args)
	case "desc":
		s.cmdDesc(args)
	case "oft":
		s.cmdOft(args)
	default:
		s.fail()
	}
	return true
}

func (s *Shell) fail() {
	fmt.Fprintln(s.out, "error")
}

func (s *Shell) cmdIn(args []string) {
	s.disk = ldisk.New()
	s.fs = fsys.New(s.disk)

	if len(args) >= 1 {
		if err := s.disk.Load(args[0]); err == nil {
			if err := s.fs.Mount(); err != nil {
				s.fail()
				return
			}
			fmt.Fprintln(s.out, "disk restored")
			return
		}
	}

	if err := s.disk.Init(); err != nil {
		s.fail()
		return
	}
	if err := s.fs.Mount(); err != nil {
		s.fail()
		return
	}
	fmt.Fprintln(s.out, "disk initialized")
}

func (s *Shell) cmdCreate(args []string) {
	if len(args) != 1 {
		s.fail()
		return
	}
	if err := s.fs.Create(args[0]); err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "%s created\n", args[0])
}

func (s *Shell) cmdDestroy(args []string) {
	if len(args) != 1 {
		s.fail()
		return
	}
	if err := s.fs.Destroy(args[0]); err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "%s destroyed \n", args[0])
}

func (s *Shell) cmdOpen(args []string) {
	if len(args) != 1 {
		s.fail()
		return
	}
	slot, err := s.fs.Open(args[0])
	if err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "%s opened %d\n", args[0], slot)
}

func (s *Shell) cmdClose(args []string) {
	slot, ok := parseInt(args, 0)
	if !ok {
		s.fail()
		return
	}
	if err := s.fs.Close(slot); err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "%d closed\n", slot)
}

func (s *Shell) cmdWrite(args []string) {
	if len(args) != 3 {
		s.fail()
		return
	}
	slot, ok := parseInt(args, 0)
	if !ok {
		s.fail()
		return
	}
	char := args[1]
	if len(char) != 1 {
		s.fail()
		return
	}
	count, ok := parseInt(args, 2)
	if !ok || count < 0 {
		s.fail()
		return
	}
	data := []byte(strings.Repeat(char, count))
	n, err := s.fs.Write(slot, data)
	if err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "%d bytes written\n", n)
}

func (s *Shell) cmdRead(args []string) {
	slot, ok := parseInt(args, 0)
	if !ok {
		s.fail()
		return
	}
	count, ok := parseInt(args, 1)
	if !ok || count < 0 {
		s.fail()
		return
	}
	data, err := s.fs.Read(slot, count)
	if err != nil {
		s.fail()
		return
	}
	fmt.Fprintln(s.out, data)
}

func (s *Shell) cmdSeek(args []string) {
	slot, ok := parseInt(args, 0)
	if !ok {
		s.fail()
		return
	}
	pos, ok := parseInt(args, 1)
	if !ok {
		s.fail()
		return
	}
	newPos, err := s.fs.Seek(slot, pos)
	if err != nil {
		s.fail()
		return
	}
	fmt.Fprintf(s.out, "position is %d\n", newPos)
}

func (s *Shell) cmdDirectory([]string) {
	names, err := s.fs.Directory()
	if err != nil {
		s.fail()
		return
	}
	for _, n := range names {
		fmt.Fprintf(s.out, "%s ", n)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) cmdSave(args []string) {
	if len(args) != 1 {
		s.fail()
		return
	}
	if err := s.fs.CloseAll(); err != nil {
		s.fail()
		return
	}
	if err := s.disk.Save(args[0]); err != nil {
		s.fail()
		return
	}
	fmt.Fprintln(s.out, "disk saved")
}

func parseInt(args []string, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, false
	}
	return n, true
}
