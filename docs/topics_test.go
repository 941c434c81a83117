package docs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
)

func TestEveryTopicIsValidMarkdown(t *testing.T) {
	names := Topics()
	if len(names) == 0 {
		t.Fatal("no topics embedded")
	}
	md := goldmark.New()
	for _, name := range names {
		body, ok := Get(name)
		if !ok {
			t.Fatalf("listed topic %q not readable", name)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(body), &buf); err != nil {
			t.Errorf("topic %q does not render: %v", name, err)
		}
		if !strings.HasPrefix(body, "# ") {
			t.Errorf("topic %q does not start with a title", name)
		}
	}
}

func TestGetUnknownTopic(t *testing.T) {
	if _, ok := Get("definitely-not-a-topic"); ok {
		t.Error("got a body for an unknown topic")
	}
}
