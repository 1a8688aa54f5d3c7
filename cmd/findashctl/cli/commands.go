// Package cli implements the findashctl subcommands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Commands are the data commands.
var Commands = []subcommands.Command{
	&tableCmd{},
	&metricsCmd{},
	&chartCmd{},
}

// JobCommands talk to the background queue.
var JobCommands = []subcommands.Command{
	&warmupCmd{},
	&queueCmd{},
}

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	// markdownStyle is a glamour standard style name.
	markdownStyle = "auto"
)

func defaultDataPath() string {
	if p := strings.TrimSpace(os.Getenv("DATA_PATH")); p != "" {
		return p
	}
	return "data.csv"
}

func defaultRedisAddr() string {
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		return addr
	}
	return "127.0.0.1:6379"
}

func printMarkdown(md string) {
	var opt glamour.TermRendererOption
	if markdownStyle == "auto" {
		opt = glamour.WithAutoStyle()
	} else {
		opt = glamour.WithStandardStyle(markdownStyle)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(0))
	if err != nil {
		fmt.Fprintln(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintln(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

func fail(format string, args ...any) {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
}

// escapeCell keeps pipes inside markdown table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
