package main

import (
	"bufio"
	"bytes"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDaemon serves a fixed answer per command line on a loopback port.
func startDaemon(t *testing.T, answers map[string]string) (host string, port int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_, _ = conn.Write([]byte("OK MPD 0.23.5\n"))

				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					answer, ok := answers[scanner.Text()]
					if !ok {
						answer = "ACK [5@0] {} unknown command\n"
					}
					if _, err := conn.Write([]byte(answer)); err != nil {
						return
					}
				}
			}()
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

var daemonAnswers = map[string]string{
	"ping": "OK\n",
	"outputs": "outputid: 0\noutputname: ALSA\nplugin: alsa\noutputenabled: 1\nattribute: dop=0\n" +
		"outputid: 1\noutputname: Stream\nplugin: httpd\noutputenabled: 0\nOK\n",
	"enableoutput 1":  "OK\n",
	"disableoutput 0": "OK\n",
	"enableoutput 7":  "ACK [50@0] {enableoutput} No such audio output\n",
	"playlistinfo": "file: a.flac\nArtist: Bach\nTitle: Aria\nAlbum: Goldberg Variations\nTime: 187\nPos: 0\nId: 1\n" +
		"file: stream.m3u\nName: Radio\nPos: 1\nId: 2\nOK\n",
	"currentsong": "file: a.flac\nArtist: Bach\nMUSICBRAINZ_TRACKID: 123\nTitle: Aria\nTime: 187\nPos: 0\nId: 1\nOK\n",
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MPD_HOST", "")
	t.Setenv("MPD_PORT", "")

	host, port := startDaemon(t, daemonAnswers)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--host", host, "--port", strconv.Itoa(port), "--timeout", "2s"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestOutputsCommand(t *testing.T) {
	out, err := runCLI(t, "outputs")
	require.NoError(t, err)

	assert.Contains(t, out, "ALSA")
	assert.Contains(t, out, "httpd")
	assert.Contains(t, out, "dop=0")
	assert.Contains(t, out, "yes")
}

func TestEnableDisableCommands(t *testing.T) {
	_, err := runCLI(t, "enable", "1")
	assert.NoError(t, err)

	_, err = runCLI(t, "disable", "0")
	assert.NoError(t, err)

	_, err = runCLI(t, "enable", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such audio output")

	_, err = runCLI(t, "enable", "first")
	assert.Error(t, err)
}

func TestPlaylistCommand(t *testing.T) {
	out, err := runCLI(t, "playlist")
	require.NoError(t, err)

	assert.Contains(t, out, "Aria")
	assert.Contains(t, out, "3:07")
	assert.Contains(t, out, "Radio", "stream name stands in for the title")
}

func TestCurrentCommand(t *testing.T) {
	out, err := runCLI(t, "current")
	require.NoError(t, err)

	assert.Contains(t, out, "Musicbrainz Trackid")
	assert.Contains(t, out, "Bach")
	assert.Contains(t, out, "3:07")
}

func TestBenchCommand(t *testing.T) {
	out, err := runCLI(t, "bench", "--operation", "playlist", "--duration", "50ms", "--concurrency", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "playlist")
	assert.Contains(t, out, "LEAKED VALUES", "go-pretty upper-cases headers")
	assert.False(t, strings.Contains(out, "last error"), out)
}

func TestBenchCommand_UnknownOperation(t *testing.T) {
	_, err := runCLI(t, "bench", "--operation", "flush")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "-", formatDuration(-1))
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "3:07", formatDuration(187))
	assert.Equal(t, "61:01", formatDuration(3661))
}

func TestFormatAttributes(t *testing.T) {
	assert.Equal(t, "", formatAttributes(nil))
	assert.Equal(t, "allowed_formats= dop=0", formatAttributes(map[string]string{"dop": "0", "allowed_formats": ""}))
}
