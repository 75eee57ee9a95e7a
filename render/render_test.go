package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/exo/exoerr"
	"github.com/morikuni/failure/v2"
)

func TestPlain(t *testing.T) {
	body := "<html>hi</html>"
	if diff := cmp.Diff(Output{Text: body}, Plain{}.Success(body)); diff != "" {
		t.Errorf("Success() mismatch (-want +got):\n%s", diff)
	}

	got := Plain{}.Failure(exoerr.New(exoerr.Network, "HTTP Error: 404 Not Found"))
	want := Output{Text: "Error loading page:\n\nNetwork error: HTTP Error: 404 Not Found"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Failure() mismatch (-want +got):\n%s", diff)
	}
}

func TestText(t *testing.T) {
	body := `<html>
<head><title> Example Domain </title><style>body { color: red }</style></head>
<body>
  <h1>Example    Domain</h1>
  <script>alert("x")</script>


  <p>This domain is for use in
     illustrative examples.</p>
</body>
</html>`

	got := Text{}.Success(body)
	want := Output{
		Text:  "Example Domain\n\nThis domain is for use in\nillustrative examples.",
		Title: "Example Domain",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Success() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdown_NeverEmptyForText(t *testing.T) {
	got := Markdown{}.Success("<html><body><p>hello <b>world</b></p></body></html>")
	if !strings.Contains(got.Text, "hello") {
		t.Errorf("Expected converted text to keep content, got %q", got.Text)
	}
}

func TestFailureIsTotal(t *testing.T) {
	for _, name := range Names() {
		tr, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) unexpected error: %v", name, err)
		}
		out := tr.Failure(exoerr.New(exoerr.Unknown, ""))
		if !strings.HasPrefix(out.Text, "Error loading page:") {
			t.Errorf("%s.Failure() = %q", name, out.Text)
		}
	}
}

func TestByName(t *testing.T) {
	if diff := cmp.Diff([]string{"markdown", "plain", "text"}, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	_, err := ByName("pdf")
	if !failure.Is(err, ErrUnknownRenderer) {
		t.Errorf("Expected error %v, got %v", ErrUnknownRenderer, err)
	}
}
