package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func accessLine(at string, status int, rt string) string {
	return `192.168.32.181 - - [` + at + `] "PUT /rest/v1.4/documents?zone=default&_rid=e356713 HTTP/1.1" ` +
		strconv.Itoa(status) + ` 2 ` + rt + ` "-" "@list-item-updater" prio:0`
}

var bigLog = strings.Join([]string{
	accessLine("14/06/2017:16:47:02 +1000", 200, "44.510983"),
	accessLine("14/06/2017:16:47:03 +1000", 200, "23.251219"),
	accessLine("14/06/2017:16:47:04 +1000", 200, "30.164372"),
	accessLine("14/06/2017:16:47:10 +1000", 200, "30.164372"),
	accessLine("14/06/2017:16:48:02 +1000", 500, "30.164372"),
	accessLine("14/06/2017:16:48:03 +1000", 504, "30.164372"),
	accessLine("14/06/2017:16:48:22 +1000", 503, "30.164372"),
	accessLine("14/06/2017:16:54:02 +1000", 200, "90.164372"),
	accessLine("14/06/2017:16:54:03 +1000", 200, "20.164372"),
	accessLine("14/06/2017:16:54:04 +1000", 200, "90.164372"),
}, "\n") + "\n"

var cleanLog = strings.Join([]string{
	accessLine("14/06/2017:16:47:02 +1000", 200, "1.5"),
	accessLine("14/06/2017:16:47:03 +1000", 200, "2.5"),
}, "\n") + "\n"

const bigLogShort = "16:47:02 16:47:04 33.3\n" +
	"16:47:10 16:47:10 0\n" +
	"16:48:02 16:48:03 0\n" +
	"16:48:22 16:48:22 0\n" +
	"16:54:02 16:54:04 33.3\n"

// execute runs cmd with args, feeding stdin and capturing both outputs.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ExitCode = 0

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
