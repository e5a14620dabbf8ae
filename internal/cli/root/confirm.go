package root

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptConfirm asks for a y/N answer. Anything but y or yes declines.
func PromptConfirm(in io.Reader, out io.Writer, message string) (bool, error) {
	if out != nil {
		if _, err := fmt.Fprintf(out, "%s [y/N]: ", message); err != nil {
			return false, err
		}
	}
	if in == nil {
		return false, nil
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	switch answer {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
