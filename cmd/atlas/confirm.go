package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// stdinConfirmer asks yes/no questions on the terminal.
type stdinConfirmer struct {
	in  io.Reader
	out io.Writer

	// assumeYes answers every question with yes, for --yes.
	assumeYes bool

	reader *bufio.Reader
}

func (c *stdinConfirmer) Confirm(prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
