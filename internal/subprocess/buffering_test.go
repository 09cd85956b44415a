package subprocess

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

// mockChunkReader delivers data in controlled chunks to simulate various
// buffering scenarios.
type mockChunkReader struct {
	chunks [][]byte
	index  int
}

func newMockChunkReader(chunks ...string) *mockChunkReader {
	byteChunks := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		byteChunks[i] = []byte(chunk)
	}

	return &mockChunkReader{chunks: byteChunks}
}

func (r *mockChunkReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}

	chunk := r.chunks[r.index]
	r.index++

	n := copy(p, chunk)

	return n, nil
}

// TestFraming_MultipleMessagesInOneRead tests parsing when several messages
// arrive in a single read, separated by newlines.
func TestFraming_MultipleMessagesInOneRead(t *testing.T) {
	buffered := `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"first"}]}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"result":{"content":[{"type":"text","text":"second"}]}}` + "\n"

	reader := newMockChunkReader(buffered)
	messages, parseErrs := parseMessageLines(t, reader)

	require.Empty(t, parseErrs)
	require.Len(t, messages, 2)
	require.Equal(t, int64(1), *messages[0].ID)
	require.Equal(t, int64(2), *messages[1].ID)
}

// TestFraming_EmbeddedNewlinesInText tests that newlines inside JSON string
// values do not break framing; only real newline bytes delimit messages.
func TestFraming_EmbeddedNewlinesInText(t *testing.T) {
	result := rpc.CallToolResult{
		Content: []rpc.ContentItem{
			{Type: "text", Text: "Line 1\nLine 2\nLine 3"},
		},
	}

	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)

	line := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":%s}`, resultJSON) + "\n"

	reader := newMockChunkReader(line)
	messages, parseErrs := parseMessageLines(t, reader)

	require.Empty(t, parseErrs)
	require.Len(t, messages, 1)

	var decoded rpc.CallToolResult
	require.NoError(t, json.Unmarshal(messages[0].Result, &decoded))
	require.Equal(t, "Line 1\nLine 2\nLine 3", decoded.Text())
}

// TestFraming_BlankLinesSkipped tests that blank and whitespace-only lines
// between messages are ignored.
func TestFraming_BlankLinesSkipped(t *testing.T) {
	buffered := `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n\n  \n\t\n" +
		`{"jsonrpc":"2.0","id":2,"result":{}}` + "\n"

	reader := newMockChunkReader(buffered)
	messages, parseErrs := parseMessageLines(t, reader)

	require.Empty(t, parseErrs)
	require.Len(t, messages, 2)
}

// TestFraming_SplitAcrossReads tests reassembly of one message delivered in
// several partial reads.
func TestFraming_SplitAcrossReads(t *testing.T) {
	result := rpc.CallToolResult{
		Content: []rpc.ContentItem{
			{Type: "text", Text: strings.Repeat("x", 1000)},
		},
	}

	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)

	complete := fmt.Sprintf(`{"jsonrpc":"2.0","id":7,"result":%s}`, resultJSON) + "\n"

	reader := newMockChunkReader(complete[:100], complete[100:250], complete[250:])
	messages, parseErrs := parseMessageLines(t, reader)

	require.Empty(t, parseErrs)
	require.Len(t, messages, 1)
	require.Equal(t, int64(7), *messages[0].ID)
}

// TestFraming_MalformedLineDoesNotStopParsing tests that a garbage line is
// reported but the messages around it still parse.
func TestFraming_MalformedLineDoesNotStopParsing(t *testing.T) {
	buffered := `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n" +
		`this is not JSON at all` + "\n" +
		`{"jsonrpc":"2.0","id":2,"result":{}}` + "\n"

	reader := newMockChunkReader(buffered)
	messages, parseErrs := parseMessageLines(t, reader)

	require.Len(t, parseErrs, 1)
	require.Len(t, messages, 2)
	require.Equal(t, int64(1), *messages[0].ID)
	require.Equal(t, int64(2), *messages[1].ID)
}

// TestFraming_BufferSizeExceeded tests that an oversized line fails the scan
// instead of being silently truncated.
func TestFraming_BufferSizeExceeded(t *testing.T) {
	customLimit := 1024
	hugeContent := strings.Repeat("x", customLimit+100)
	line := `{"jsonrpc":"2.0","id":1,"result":{"data":"` + hugeContent + `"}}` + "\n"

	scanner := bufio.NewScanner(strings.NewReader(line))

	buf := make([]byte, customLimit)
	scanner.Buffer(buf, customLimit)

	require.False(t, scanner.Scan())
	require.Error(t, scanner.Err())
	require.Contains(t, scanner.Err().Error(), "token too long")
}

// TestFraming_ChunkBoundariesNeverCorrupt is a property test: however the
// byte stream is cut into read chunks, the decoded message sequence is
// identical to what was framed.
func TestFraming_ChunkBoundariesNeverCorrupt(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(t, "count")

		var stream bytes.Buffer

		wantTexts := make([]string, count)

		for i := 0; i < count; i++ {
			text := rapid.StringN(0, 200, -1).Draw(t, fmt.Sprintf("text%d", i))
			wantTexts[i] = text

			result := rpc.CallToolResult{
				Content: []rpc.ContentItem{{Type: "text", Text: text}},
			}

			resultJSON, err := json.Marshal(result)
			require.NoError(t, err)

			fmt.Fprintf(&stream, `{"jsonrpc":"2.0","id":%d,"result":%s}`, i+1, resultJSON)
			stream.WriteByte('\n')
		}

		// Cut the stream at arbitrary positions.
		raw := stream.Bytes()
		var chunks []string

		for len(raw) > 0 {
			n := rapid.IntRange(1, len(raw)).Draw(t, "chunk")
			chunks = append(chunks, string(raw[:n]))
			raw = raw[n:]
		}

		messages, parseErrs := parseMessageLines(t, newMockChunkReader(chunks...))

		require.Empty(t, parseErrs)
		require.Len(t, messages, count)

		for i, msg := range messages {
			require.Equal(t, int64(i+1), *msg.ID)

			var decoded rpc.CallToolResult
			require.NoError(t, json.Unmarshal(msg.Result, &decoded))
			require.Equal(t, wantTexts[i], decoded.Text())
		}
	})
}

// parseMessageLines mimics the transport's read loop: scan lines, skip
// blanks, collect parse failures without stopping.
func parseMessageLines(t require.TestingT, reader io.Reader) ([]*rpc.Message, []error) {
	var (
		messages  []*rpc.Message
		parseErrs []error
	)

	scanner := bufio.NewScanner(reader)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var msg rpc.Message

		if err := json.Unmarshal(line, &msg); err != nil {
			parseErrs = append(parseErrs, err)

			continue
		}

		messages = append(messages, &msg)
	}

	require.NoError(t, scanner.Err())

	return messages, parseErrs
}
