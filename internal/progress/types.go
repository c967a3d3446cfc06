package progress

// DefaultSteps are the cosmetic stages shown while a scan is pending. They are not
// tied to any real server-side progress.
var DefaultSteps = []string{
	"Initializing scan",
	"Checking SSL certificate",
	"Scanning for vulnerabilities",
	"Analyzing security headers",
	"Generating AI summary",
}

// Snapshot is a point-in-time view of the indicator.
type Snapshot struct {
	Running bool     `json:"running"`
	Cursor  int      `json:"cursor"`
	Steps   []string `json:"steps"`
}

// Current returns the label under the cursor.
func (s Snapshot) Current() string {
	if s.Cursor < 0 || s.Cursor >= len(s.Steps) {
		return ""
	}
	return s.Steps[s.Cursor]
}

// Completed reports whether step i is before the cursor.
func (s Snapshot) Completed(i int) bool {
	return i < s.Cursor
}
