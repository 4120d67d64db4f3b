package mcpserver

import (
	"encoding/json"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/mask"
)

func successResult(data interface{}) *mcpsdk.CallToolResult {
	b, _ := json.Marshal(data)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(b)}},
	}
}

func errorResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "error: " + msg}},
		IsError: true,
	}
}

// maskedPreview renders the document like Preview, with entries that hold
// a secret rewritten as KEY=<masked>. Comments and plain entries keep
// their source text.
func maskedPreview(f *envfile.File, d *mask.Detector) string {
	lines := f.Lines()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !line.IsEntry() || line.Value == "" || d.Plain(line.Key, line.Value) {
			out = append(out, line.Raw)
			continue
		}
		out = append(out, line.Key+"="+envfile.FormatValue(mask.Mask(line.Value))+line.InlineComment)
	}
	return strings.Join(out, "\n")
}
