package parser

import (
	"strings"
	"testing"
)

const jobPage = `<!DOCTYPE html>
<html>
<head><title>Backend Engineer at Acme</title><style>body{color:red}</style></head>
<body>
<nav><a href="/">Home</a> <a href="/jobs">Jobs</a></nav>
<div class="posting">
  <h2>About the Role</h2>
  <p>You will join the platform team
     and build reliable services.</p>
  <p><strong>Location:</strong> Remote<br><strong>Salary:</strong> $120,000 - $150,000</p>
  <h2>Requirements</h2>
  <ul>
    <li>5+ years of Go experience</li>
    <li>Distributed systems
      <ul><li>Consensus protocols</li></ul>
    </li>
  </ul>
</div>
<script>track()</script>
<footer>Copyright Acme</footer>
</body>
</html>`

func TestExtractFallback(t *testing.T) {
	got, err := extractFallback([]byte(jobPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Backend Engineer at Acme\n\n" +
		"About the Role\n" +
		"You will join the platform team and build reliable services.\n\n" +
		"Location: Remote\nSalary: $120,000 - $150,000\n\n" +
		"Requirements\n" +
		"- 5+ years of Go experience\n" +
		"- Distributed systems\n" +
		"    - Consensus protocols"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestHTMLExtractor_DropsChrome(t *testing.T) {
	got, err := (&HTMLExtractor{}).Extract(strings.NewReader(jobPage), "job.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range []string{"track()", "color:red", "Copyright Acme"} {
		if strings.Contains(got, s) {
			t.Errorf("expected %q stripped, got %q", s, got)
		}
	}
	for _, s := range []string{"5+ years of Go experience", "Consensus protocols"} {
		if !strings.Contains(got, s) {
			t.Errorf("expected %q kept, got %q", s, got)
		}
	}
}

func TestFlowText(t *testing.T) {
	got, err := extractFallback([]byte("<p>one   two<br/>three <em>four</em></p>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one two\nthree four" {
		t.Errorf("expected %q, got %q", "one two\nthree four", got)
	}
}

func TestTableRows(t *testing.T) {
	got, err := extractFallback([]byte("<table><tr><th>Type</th><td>Full-time</td></tr></table>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Type: Full-time" {
		t.Errorf("expected %q, got %q", "Type: Full-time", got)
	}
}
